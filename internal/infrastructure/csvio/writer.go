package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Writer emits CSV with a fixed column order established by the header row.
// Every subsequent row must carry exactly that many fields.
type Writer struct {
	writer  *csv.Writer
	columns int
}

// NewWriter creates a writer with the given header row
func NewWriter(w io.Writer, header []string) (*Writer, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return nil, err
	}
	return &Writer{writer: cw, columns: len(header)}, nil
}

// WriteRow appends one data row
func (w *Writer) WriteRow(fields []string) error {
	if len(fields) != w.columns {
		return fmt.Errorf("row has %d fields, header has %d", len(fields), w.columns)
	}
	return w.writer.Write(fields)
}

// Flush writes buffered data to the underlying writer
func (w *Writer) Flush() error {
	w.writer.Flush()
	return w.writer.Error()
}

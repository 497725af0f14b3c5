package importexport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/component"
	"github.com/labstock/backend/internal/domain/identity"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/infrastructure/csvio"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Column names of the component CSV format. Export always emits them in
// this order; import accepts any column order and matches by name.
const (
	ColName         = "Name"
	ColPartNumber   = "Part Number"
	ColManufacturer = "Manufacturer"
	ColCategory     = "Category"
	ColQuantity     = "Quantity"
	ColUnitPrice    = "Unit Price"
	ColThreshold    = "Critical Low Threshold"
	ColLocation     = "Location"
	ColDescription  = "Description"
	ColAddedDate    = "Added Date"
)

// exportHeader is the fixed export column order
var exportHeader = []string{
	ColName, ColPartNumber, ColManufacturer, ColCategory, ColQuantity,
	ColUnitPrice, ColThreshold, ColLocation, ColDescription, ColAddedDate,
}

// requiredImportColumns must all be present in an import file
var requiredImportColumns = []string{
	ColName, ColPartNumber, ColManufacturer, ColCategory, ColQuantity,
}

const dateLayout = "2006-01-02"

// RowFailure reports one rejected import row with its line number
type RowFailure struct {
	Line       int    `json:"line"`
	PartNumber string `json:"part_number,omitempty"`
	Error      string `json:"error"`
}

// ImportResult summarizes one import run. Rows fail independently; a bad
// row never aborts the rest of the file.
type ImportResult struct {
	TotalRows int          `json:"total_rows"`
	Created   int          `json:"created"`
	Failed    []RowFailure `json:"failed"`
}

// ComponentCSVService imports and exports the component catalog as CSV
type ComponentCSVService struct {
	componentRepo  component.ComponentRepository
	userRepo       identity.UserRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewComponentCSVService creates a new ComponentCSVService
func NewComponentCSVService(
	componentRepo component.ComponentRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *ComponentCSVService {
	return &ComponentCSVService{
		componentRepo: componentRepo,
		userRepo:      userRepo,
		logger:        logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ComponentCSVService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ComponentCSVService) requireActor(ctx context.Context, actorID uuid.UUID, capability identity.Capability) (*identity.User, error) {
	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}
	if !actor.IsActive {
		return nil, shared.ErrUnauthorized
	}
	if !identity.Can(actor, capability) {
		return nil, shared.ErrForbidden
	}
	return actor, nil
}

// Import reads a component CSV and creates one component per valid row.
// Part numbers must be unique within the file and against active components.
func (s *ComponentCSVService) Import(ctx context.Context, actorID uuid.UUID, r io.Reader) (*ImportResult, error) {
	if _, err := s.requireActor(ctx, actorID, identity.CapabilityEdit); err != nil {
		return nil, err
	}

	parser, err := csvio.NewParser(r)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_FILE", err.Error())
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, shared.NewDomainError("INVALID_FILE", err.Error())
	}
	if missing := parser.MissingHeaders(requiredImportColumns...); len(missing) > 0 {
		return nil, shared.NewDomainError("INVALID_FILE",
			fmt.Sprintf("Missing required columns: %s", strings.Join(missing, ", ")))
	}

	result := &ImportResult{Failed: make([]RowFailure, 0)}
	seen := make(map[string]int) // part number -> first line seen

	for {
		row, err := parser.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.TotalRows++
			result.Failed = append(result.Failed, RowFailure{Line: result.TotalRows + 1, Error: err.Error()})
			continue
		}
		if row.IsEmpty() {
			continue
		}
		result.TotalRows++

		partNumber := row.Get(ColPartNumber)
		if firstLine, dup := seen[strings.ToUpper(partNumber)]; dup && partNumber != "" {
			result.Failed = append(result.Failed, RowFailure{
				Line:       row.LineNumber,
				PartNumber: partNumber,
				Error:      fmt.Sprintf("duplicate part number, first seen on line %d", firstLine),
			})
			continue
		}

		c, err := s.buildComponent(row)
		if err != nil {
			result.Failed = append(result.Failed, RowFailure{Line: row.LineNumber, PartNumber: partNumber, Error: err.Error()})
			continue
		}

		existing, err := s.componentRepo.FindActiveByPartNumber(ctx, c.PartNumber)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			result.Failed = append(result.Failed, RowFailure{Line: row.LineNumber, PartNumber: c.PartNumber, Error: err.Error()})
			continue
		}
		if existing != nil {
			result.Failed = append(result.Failed, RowFailure{
				Line:       row.LineNumber,
				PartNumber: c.PartNumber,
				Error:      "a component with this part number already exists",
			})
			continue
		}

		if err := s.componentRepo.Save(ctx, c); err != nil {
			result.Failed = append(result.Failed, RowFailure{Line: row.LineNumber, PartNumber: c.PartNumber, Error: err.Error()})
			continue
		}
		s.publishDomainEvents(ctx, c)

		seen[strings.ToUpper(c.PartNumber)] = row.LineNumber
		result.Created++
	}

	s.logger.Info("component import finished",
		zap.String("actor_id", actorID.String()),
		zap.Int("rows", result.TotalRows),
		zap.Int("created", result.Created),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

// buildComponent turns one CSV row into a component aggregate
func (s *ComponentCSVService) buildComponent(row *csvio.Row) (*component.Component, error) {
	quantity, err := strconv.ParseInt(row.Get(ColQuantity), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid quantity %q", row.Get(ColQuantity))
	}

	unitPrice := decimal.Zero
	if raw := row.Get(ColUnitPrice); raw != "" {
		unitPrice, err = decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid unit price %q", raw)
		}
	}

	var threshold int64
	if raw := row.Get(ColThreshold); raw != "" {
		threshold, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid critical low threshold %q", raw)
		}
	}

	category := component.Category(strings.ToLower(row.Get(ColCategory)))

	return component.NewComponent(
		row.Get(ColName),
		row.Get(ColPartNumber),
		row.Get(ColManufacturer),
		category,
		row.Get(ColDescription),
		quantity,
		unitPrice,
		threshold,
		row.Get(ColLocation),
	)
}

func (s *ComponentCSVService) publishDomainEvents(ctx context.Context, c *component.Component) {
	if s.eventPublisher == nil {
		c.ClearDomainEvents()
		return
	}
	events := c.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	c.ClearDomainEvents()
}

// Export writes every active component as CSV in the fixed column order.
// Returns the number of rows written.
func (s *ComponentCSVService) Export(ctx context.Context, actorID uuid.UUID, w io.Writer) (int, error) {
	if _, err := s.requireActor(ctx, actorID, identity.CapabilityReports); err != nil {
		return 0, err
	}

	components, err := s.componentRepo.FindAllActive(ctx)
	if err != nil {
		return 0, err
	}

	writer, err := csvio.NewWriter(w, exportHeader)
	if err != nil {
		return 0, err
	}

	for i := range components {
		c := &components[i]
		row := []string{
			c.Name,
			c.PartNumber,
			c.Manufacturer,
			c.Category.String(),
			strconv.FormatInt(c.Quantity, 10),
			c.UnitPrice.String(),
			strconv.FormatInt(c.CriticalLowThreshold, 10),
			c.Location,
			c.Description,
			c.CreatedAt.Format(dateLayout),
		}
		if err := writer.WriteRow(row); err != nil {
			return 0, err
		}
	}
	if err := writer.Flush(); err != nil {
		return 0, err
	}
	return len(components), nil
}

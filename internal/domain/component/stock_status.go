package component

// StockStatus represents the derived stock state of a component
type StockStatus string

const (
	// StockStatusInStock means quantity is above the critical threshold
	StockStatusInStock StockStatus = "in_stock"
	// StockStatusLowStock means quantity is positive but at or below the critical threshold
	StockStatusLowStock StockStatus = "low_stock"
	// StockStatusOutOfStock means quantity is zero
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

// String returns the string representation of StockStatus
func (s StockStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a known stock status
func (s StockStatus) IsValid() bool {
	switch s {
	case StockStatusInStock, StockStatusLowStock, StockStatusOutOfStock:
		return true
	}
	return false
}

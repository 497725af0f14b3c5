package notification

import "time"

// Metadata is a snapshot of context captured at creation time so the
// notification can be displayed without re-joining its source entities.
// Exactly one variant is populated, matching the notification category.
type Metadata struct {
	LowStock      *LowStockMetadata      `json:"low_stock,omitempty"`
	OldStock      *OldStockMetadata      `json:"old_stock,omitempty"`
	StockMovement *StockMovementMetadata `json:"stock_movement,omitempty"`
	System        map[string]string      `json:"system,omitempty"`
}

// LowStockMetadata captures the stock state that triggered a low-stock alert
type LowStockMetadata struct {
	ComponentName        string `json:"component_name"`
	PartNumber           string `json:"part_number"`
	Quantity             int64  `json:"quantity"`
	CriticalLowThreshold int64  `json:"critical_low_threshold"`
	Location             string `json:"location,omitempty"`
}

// OldStockMetadata captures the staleness details behind an old-stock alert
type OldStockMetadata struct {
	ComponentName string     `json:"component_name"`
	PartNumber    string     `json:"part_number"`
	Quantity      int64      `json:"quantity"`
	AgeDays       int        `json:"age_days"`
	LastOutwardAt *time.Time `json:"last_outward_at,omitempty"`
}

// StockMovementMetadata captures the movement behind a stock-movement notification
type StockMovementMetadata struct {
	ComponentName     string `json:"component_name"`
	PartNumber        string `json:"part_number"`
	MovementType      string `json:"movement_type"`
	Quantity          int64  `json:"quantity"`
	ResultingQuantity int64  `json:"resulting_quantity"`
	ActorName         string `json:"actor_name"`
	Reason            string `json:"reason"`
	Project           string `json:"project"`
}

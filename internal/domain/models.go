// backend-go/internal/domain/models.go
package domain

import "time"

// MovementDirection distinguishes stock coming in (receiving) from stock
// going out (consumption). Usage analytics only looks at outbound movements.
type MovementDirection string

const (
	DirectionIn  MovementDirection = "in"
	DirectionOut MovementDirection = "out"
)

// UsageEvent is a single inventory movement for an item. Immutable; sourced
// from the movements table and never written back.
type UsageEvent struct {
	ID           int64             `json:"id" db:"id"`
	ItemID       int64             `json:"item_id" db:"item_id"`
	Quantity     float64           `json:"quantity" db:"quantity"`
	Direction    MovementDirection `json:"direction" db:"direction"`
	MovementType string            `json:"movement_type" db:"movement_type"`
	OccurredAt   time.Time         `json:"occurred_at" db:"occurred_at"`
}

// Item represents an inventory item with its current stock snapshot and the
// par levels stored by the purchasing workflow.
type Item struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Unit         string    `json:"unit" db:"unit"`
	Category     string    `json:"category" db:"category"`
	CurrentStock float64   `json:"current_stock" db:"current_stock"`
	ParLow       float64   `json:"par_low" db:"par_low"`
	ParHigh      float64   `json:"par_high" db:"par_high"`
	LeadTimeDays int       `json:"lead_time_days" db:"lead_time_days"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

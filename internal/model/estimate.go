package model

import "time"

// OrderEstimate is the persisted snapshot of the last wait-time estimate
// computed for an order. It is overwritten on every recomputation and
// zeroed once the order is ready (the wait is over).
type OrderEstimate struct {
	OrderID int64 `gorm:"primaryKey" json:"order_id"`
	// QueueDelayMinutes is the time until a preparation slot is expected
	// to free up; zero when a slot is already free.
	QueueDelayMinutes float64 `gorm:"not null" json:"queue_delay_minutes"`
	// OwnPrepMinutes is the time to prepare this order's own items.
	OwnPrepMinutes float64 `gorm:"not null" json:"own_prep_minutes"`
	// TotalMinutes = QueueDelayMinutes + OwnPrepMinutes.
	TotalMinutes float64 `gorm:"not null" json:"total_minutes"`
	// MaxConcurrent is the capacity value used in this computation,
	// captured rather than re-derived later.
	MaxConcurrent int       `gorm:"not null" json:"max_concurrent"`
	ComputedAt    time.Time `gorm:"not null" json:"computed_at"`
}

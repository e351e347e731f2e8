package model

import "time"

// PrepObservation is a single observed preparation duration for a menu
// item, in minutes. Rows are append-only (cold table).
type PrepObservation struct {
	ID         int64     `gorm:"autoIncrement;primaryKey" json:"id"`
	MenuItemID int64     `gorm:"index;not null" json:"menu_item_id"`
	Minutes    float64   `gorm:"not null" json:"minutes"`
	ObservedAt time.Time `gorm:"not null" json:"observed_at"`
}

// MenuItemPrepStat holds the running preparation-time aggregate for a menu
// item (hot table). The average is recomputed server-side on every append
// so concurrent writers cannot lose updates.
type MenuItemPrepStat struct {
	MenuItemID   int64   `gorm:"primaryKey" json:"menu_item_id"`
	SampleCount  int64   `gorm:"not null" json:"sample_count"`
	TotalMinutes float64 `gorm:"not null" json:"total_minutes"`
	AvgMinutes   float64 `gorm:"not null" json:"avg_minutes"`
	UpdatedAt    time.Time
}

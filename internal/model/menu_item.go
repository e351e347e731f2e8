package model

import "time"

// MenuItem represents a single dish offered by a truck.
type MenuItem struct {
	ID        int64   `gorm:"primaryKey" json:"id"`
	TruckID   int64   `gorm:"index;not null" json:"truck_id"`
	Name      string  `gorm:"size:256;not null" json:"name"`
	Price     float64 `gorm:"not null" json:"price"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

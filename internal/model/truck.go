package model

import "time"

// Truck represents a food truck on the marketplace.
type Truck struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	OwnerID   int64  `gorm:"index;not null" json:"owner_id"`
	Name      string `gorm:"size:256;not null" json:"name"`
	City      string `gorm:"size:128;index;not null" json:"city"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Associations
	MenuItems []MenuItem `gorm:"foreignKey:TruckID" json:"-"`
}

// TruckCapacity is a truck's configured concurrent-preparation capacity.
// A truck without a record falls back to the system-wide default.
type TruckCapacity struct {
	TruckID       int64 `gorm:"primaryKey" json:"truck_id"`
	MaxConcurrent int   `gorm:"not null" json:"max_concurrent"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

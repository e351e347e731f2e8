package model

import "time"

// Customer represents a marketplace user who places orders.
// Authentication lives outside this service; only identity and the
// city used by the same-city ordering check are kept here.
type Customer struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:256;not null" json:"name"`
	City      string `gorm:"size:128;not null" json:"city"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

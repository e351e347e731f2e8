package model

import "time"

// PushSubscription holds a browser push subscription for a customer.
// A customer may hold several (one per device/browser); order status
// change notifications fan out to all of them.
type PushSubscription struct {
	Endpoint   string    `gorm:"primaryKey"`
	CustomerID int64     `gorm:"index;not null"`
	P256DH     string    `gorm:"column:p256dh;not null"`
	Auth       string    `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

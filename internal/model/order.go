package model

import "time"

// OrderStatus is the lifecycle state of an order. Statuses only advance,
// never regress: pending -> preparing -> ready -> completed.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
)

// statusRank orders the lifecycle statuses for monotonicity checks.
var statusRank = map[OrderStatus]int{
	StatusPending:   0,
	StatusPreparing: 1,
	StatusReady:     2,
	StatusCompleted: 3,
}

// Valid reports whether s is one of the known lifecycle statuses.
func (s OrderStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanAdvanceTo reports whether next is the immediate successor of s.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	cur, ok := statusRank[s]
	if !ok {
		return false
	}
	nxt, ok := statusRank[next]
	if !ok {
		return false
	}
	return nxt == cur+1
}

// Order represents a placed food order.
type Order struct {
	ID         int64       `gorm:"primaryKey" json:"id"`
	CustomerID int64       `gorm:"index;not null" json:"customer_id"`
	TruckID    int64       `gorm:"index;not null" json:"truck_id"`
	TotalPrice float64     `gorm:"not null" json:"total_price"`
	OrderType  string      `gorm:"size:32;default:pickup" json:"order_type"`
	Status     OrderStatus `gorm:"size:32;index;default:pending" json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"-"`

	// Associations
	Items            []OrderItem            `gorm:"foreignKey:OrderID" json:"items"`
	StatusTimestamps []OrderStatusTimestamp `gorm:"foreignKey:OrderID" json:"status_timestamps,omitempty"`
}

// OrderItem is a single line of an order. Line order follows insertion
// order; the first line is the one the queue-delay approximation samples.
type OrderItem struct {
	ID         int64   `gorm:"primaryKey" json:"id"`
	OrderID    int64   `gorm:"index;not null" json:"order_id"`
	MenuItemID int64   `gorm:"index;not null" json:"menu_item_id"`
	Name       string  `gorm:"size:256" json:"name"`
	Quantity   int     `gorm:"not null" json:"quantity"`
	Price      float64 `json:"price"`
}

// OrderStatusTimestamp records the wall-clock instant an order entered a
// status. At most one row exists per (order, status) since an order never
// revisits a status.
type OrderStatusTimestamp struct {
	OrderID    int64       `gorm:"primaryKey" json:"order_id"`
	Status     OrderStatus `gorm:"primaryKey;size:32" json:"status"`
	RecordedAt time.Time   `gorm:"not null" json:"recorded_at"`
}

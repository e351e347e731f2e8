package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"foodtruck-market-backend/internal/model"
)

// Sentinel errors for entities a caller referenced but that do not exist.
// Absence of optional configuration (capacity, prep history) is reported
// with its own sentinel so callers can fall back to defaults.
var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrTruckNotFound        = errors.New("truck not found")
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrCapacityNotFound     = errors.New("no capacity configured for truck")
	ErrEstimateNotFound     = errors.New("no estimate found for order")
	ErrStatsNotFound        = errors.New("no preparation stats for menu item")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// Store defines the interface for all database operations.
type Store interface {
	// Orders
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	ListOrdersByTruckAndStatus(ctx context.Context, truckID int64, status model.OrderStatus) ([]model.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID int64) ([]model.Order, error)
	ListOrdersByTruck(ctx context.Context, truckID int64) ([]model.Order, error)
	SetOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus, at time.Time) error
	GetStatusTimestamp(ctx context.Context, orderID int64, status model.OrderStatus) (time.Time, bool, error)

	// Trucks and customers
	GetTruck(ctx context.Context, id int64) (*model.Truck, error)
	GetCustomer(ctx context.Context, id int64) (*model.Customer, error)
	ListTruckSummaries(ctx context.Context) ([]TruckSummary, error)
	MenuItemExists(ctx context.Context, id int64) (bool, error)

	// Capacity
	UpsertTruckCapacity(ctx context.Context, truckID int64, maxConcurrent int) (*model.TruckCapacity, error)
	GetTruckCapacity(ctx context.Context, truckID int64) (*model.TruckCapacity, error)

	// Preparation stats
	AppendPrepObservation(ctx context.Context, menuItemID int64, minutes float64, at time.Time) error
	GetPrepStat(ctx context.Context, menuItemID int64) (*model.MenuItemPrepStat, error)
	ListPrepObservations(ctx context.Context, menuItemID int64) ([]model.PrepObservation, error)

	// Estimates
	UpsertOrderEstimate(ctx context.Context, est *model.OrderEstimate) error
	GetOrderEstimate(ctx context.Context, orderID int64) (*model.OrderEstimate, error)
	ResetOrderEstimate(ctx context.Context, orderID int64, at time.Time) error

	// Push subscriptions
	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	ListSubscriptionsByCustomer(ctx context.Context, customerID int64) ([]model.PushSubscription, error)

	DB() *gorm.DB
}

// TruckSummary is a truck with its aggregated menu size, used by listings.
type TruckSummary struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	City      string `json:"city"`
	MenuItems int64  `json:"menu_items"`
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying handle for callers that need raw queries.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"foodtruck-market-backend/internal/model"
)

// CreateOrder persists a new order with its items.
func (s *gormStore) CreateOrder(ctx context.Context, order *model.Order) error {
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetOrder fetches an order with its items and status timestamps.
func (s *gormStore) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("StatusTimestamps").
		First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order %d: %w", id, err)
	}
	return &order, nil
}

// ListOrdersByTruckAndStatus returns all of a truck's orders in the given
// status, items and timestamps included. The estimate engine uses this to
// snapshot the truck's in-flight orders.
func (s *gormStore) ListOrdersByTruckAndStatus(ctx context.Context, truckID int64, status model.OrderStatus) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("StatusTimestamps").
		Where("truck_id = ? AND status = ?", truckID, status).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s orders for truck %d: %w", status, truckID, err)
	}
	return orders, nil
}

// ListOrdersByCustomer returns a customer's orders, newest first.
func (s *gormStore) ListOrdersByCustomer(ctx context.Context, customerID int64) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for customer %d: %w", customerID, err)
	}
	return orders, nil
}

// ListOrdersByTruck returns a truck's orders, newest first.
func (s *gormStore) ListOrdersByTruck(ctx context.Context, truckID int64) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("truck_id = ?", truckID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for truck %d: %w", truckID, err)
	}
	return orders, nil
}

// SetOrderStatus updates the order's status and records the instant it
// entered that status, in one transaction. The timestamp insert ignores
// conflicts: the first recorded instant for a status wins.
func (s *gormStore) SetOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus, at time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Order{}).Where("id = ?", orderID).Update("status", status)
		if res.Error != nil {
			return fmt.Errorf("failed to update status of order %d: %w", orderID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrOrderNotFound
		}

		ts := model.OrderStatusTimestamp{OrderID: orderID, Status: status, RecordedAt: at}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ts).Error; err != nil {
			return fmt.Errorf("failed to record %s timestamp for order %d: %w", status, orderID, err)
		}
		return nil
	})
}

// GetStatusTimestamp returns the instant the order entered the given
// status, with found=false when the order never reached it.
func (s *gormStore) GetStatusTimestamp(ctx context.Context, orderID int64, status model.OrderStatus) (time.Time, bool, error) {
	var ts model.OrderStatusTimestamp
	err := s.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, status).
		First(&ts).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to fetch %s timestamp for order %d: %w", status, orderID, err)
	}
	return ts.RecordedAt, true, nil
}

// GetTruck fetches a truck by id.
func (s *gormStore) GetTruck(ctx context.Context, id int64) (*model.Truck, error) {
	var truck model.Truck
	err := s.db.WithContext(ctx).First(&truck, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTruckNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch truck %d: %w", id, err)
	}
	return &truck, nil
}

// GetCustomer fetches a customer by id.
func (s *gormStore) GetCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	var customer model.Customer
	err := s.db.WithContext(ctx).First(&customer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch customer %d: %w", id, err)
	}
	return &customer, nil
}

// ListTruckSummaries returns all trucks with their menu sizes in one
// aggregated query per table.
func (s *gormStore) ListTruckSummaries(ctx context.Context) ([]TruckSummary, error) {
	var trucks []model.Truck
	if err := s.db.WithContext(ctx).Find(&trucks).Error; err != nil {
		return nil, fmt.Errorf("failed to list trucks: %w", err)
	}

	type aggRow struct {
		TruckID int64
		Count   int64
	}
	var aggs []aggRow
	err := s.db.WithContext(ctx).
		Model(&model.MenuItem{}).
		Select("truck_id as truck_id, COUNT(*) as count").
		Group("truck_id").
		Scan(&aggs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate menu items: %w", err)
	}

	aggMap := make(map[int64]int64, len(aggs))
	for _, a := range aggs {
		aggMap[a.TruckID] = a.Count
	}

	summaries := make([]TruckSummary, 0, len(trucks))
	for _, t := range trucks {
		summaries = append(summaries, TruckSummary{
			ID: t.ID, Name: t.Name, City: t.City,
			MenuItems: aggMap[t.ID],
		})
	}
	return summaries, nil
}

// MenuItemExists reports whether a menu item with the given id exists.
func (s *gormStore) MenuItemExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.MenuItem{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check menu item %d: %w", id, err)
	}
	return count > 0, nil
}

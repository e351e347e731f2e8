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

// UpsertTruckCapacity creates or replaces a truck's capacity record.
func (s *gormStore) UpsertTruckCapacity(ctx context.Context, truckID int64, maxConcurrent int) (*model.TruckCapacity, error) {
	capacity := model.TruckCapacity{TruckID: truckID, MaxConcurrent: maxConcurrent}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "truck_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"max_concurrent", "updated_at"}),
	}).Create(&capacity).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert capacity for truck %d: %w", truckID, err)
	}
	return &capacity, nil
}

// GetTruckCapacity returns the truck's capacity record, or
// ErrCapacityNotFound when none is configured. Absence is a normal state;
// callers that want a working value should go through the capacity
// provider, which applies the system default.
func (s *gormStore) GetTruckCapacity(ctx context.Context, truckID int64) (*model.TruckCapacity, error) {
	var capacity model.TruckCapacity
	err := s.db.WithContext(ctx).Where("truck_id = ?", truckID).First(&capacity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCapacityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch capacity for truck %d: %w", truckID, err)
	}
	return &capacity, nil
}

// AppendPrepObservation appends one observed duration and folds it into the
// running aggregate. The aggregate update is a single upsert whose new
// count, total and average are computed by the database, so concurrent
// appends for the same menu item cannot lose updates.
func (s *gormStore) AppendPrepObservation(ctx context.Context, menuItemID int64, minutes float64, at time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		obs := model.PrepObservation{MenuItemID: menuItemID, Minutes: minutes, ObservedAt: at}
		if err := tx.Create(&obs).Error; err != nil {
			return fmt.Errorf("failed to append prep observation for menu item %d: %w", menuItemID, err)
		}

		stat := model.MenuItemPrepStat{
			MenuItemID:   menuItemID,
			SampleCount:  1,
			TotalMinutes: minutes,
			AvgMinutes:   minutes,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "menu_item_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"sample_count":  gorm.Expr("menu_item_prep_stats.sample_count + 1"),
				"total_minutes": gorm.Expr("menu_item_prep_stats.total_minutes + ?", minutes),
				"avg_minutes":   gorm.Expr("(menu_item_prep_stats.total_minutes + ?) / (menu_item_prep_stats.sample_count + 1)", minutes),
				"updated_at":    at,
			}),
		}).Create(&stat).Error
		if err != nil {
			return fmt.Errorf("failed to upsert prep stats for menu item %d: %w", menuItemID, err)
		}
		return nil
	})
}

// GetPrepStat returns the running aggregate for a menu item, or
// ErrStatsNotFound when no duration has ever been observed.
func (s *gormStore) GetPrepStat(ctx context.Context, menuItemID int64) (*model.MenuItemPrepStat, error) {
	var stat model.MenuItemPrepStat
	err := s.db.WithContext(ctx).Where("menu_item_id = ?", menuItemID).First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStatsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prep stats for menu item %d: %w", menuItemID, err)
	}
	return &stat, nil
}

// ListPrepObservations returns a menu item's observed durations in append
// order.
func (s *gormStore) ListPrepObservations(ctx context.Context, menuItemID int64) ([]model.PrepObservation, error) {
	var obs []model.PrepObservation
	err := s.db.WithContext(ctx).
		Where("menu_item_id = ?", menuItemID).
		Order("id ASC").
		Find(&obs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list prep observations for menu item %d: %w", menuItemID, err)
	}
	return obs, nil
}

// UpsertOrderEstimate creates or overwrites the estimate snapshot for an
// order.
func (s *gormStore) UpsertOrderEstimate(ctx context.Context, est *model.OrderEstimate) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"queue_delay_minutes", "own_prep_minutes", "total_minutes", "max_concurrent", "computed_at",
		}),
	}).Create(est).Error
	if err != nil {
		return fmt.Errorf("failed to upsert estimate for order %d: %w", est.OrderID, err)
	}
	return nil
}

// GetOrderEstimate returns the last persisted estimate for an order.
func (s *gormStore) GetOrderEstimate(ctx context.Context, orderID int64) (*model.OrderEstimate, error) {
	var est model.OrderEstimate
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&est).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEstimateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch estimate for order %d: %w", orderID, err)
	}
	return &est, nil
}

// ResetOrderEstimate zeroes the minute fields of an order's estimate once
// its wait is over. The capacity snapshot of the last real computation is
// left in place.
func (s *gormStore) ResetOrderEstimate(ctx context.Context, orderID int64, at time.Time) error {
	est := model.OrderEstimate{OrderID: orderID, ComputedAt: at}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"queue_delay_minutes", "own_prep_minutes", "total_minutes", "computed_at",
		}),
	}).Create(&est).Error
	if err != nil {
		return fmt.Errorf("failed to reset estimate for order %d: %w", orderID, err)
	}
	return nil
}

// Package estimate computes capacity-aware wait-time estimates for orders:
// how long until a preparation slot frees up, plus how long the order's own
// items take once one does.
package estimate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"foodtruck-market-backend/internal/model"
	"foodtruck-market-backend/internal/stats"
	"foodtruck-market-backend/internal/store"
)

// ErrNoItems rejects preview requests with an empty item list.
var ErrNoItems = errors.New("at least one item is required")

// Result is a computed wait-time estimate for a specific order.
type Result struct {
	QueueDelayMinutes float64   `json:"queue_delay_minutes"`
	OwnPrepMinutes    float64   `json:"own_prep_minutes"`
	TotalMinutes      float64   `json:"total_minutes"`
	MaxConcurrent     int       `json:"max_concurrent"`
	ComputedAt        time.Time `json:"computed_at"`
}

// PreviewItem is one line of a not-yet-placed order.
type PreviewItem struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

// Engine computes and persists order wait estimates.
type Engine struct {
	store    store.Store
	stats    *stats.Recorder
	capacity *CapacityProvider
}

// NewEngine creates an estimate engine.
func NewEngine(s store.Store, recorder *stats.Recorder, capacity *CapacityProvider) *Engine {
	return &Engine{store: s, stats: recorder, capacity: capacity}
}

// Compute calculates the two-part wait estimate for an existing order and
// persists it as the order's estimate record. A non-nil override replaces
// the stored capacity for this computation only.
//
// The queue delay models slot occupancy: while every slot is taken, the
// wait is the minimum remaining time across the truck's preparing orders,
// where each order's remaining time is approximated from its first item's
// average preparation time. The single-item proxy understates multi-item
// orders; it is kept deliberately because changing it changes every
// estimate customers see.
func (e *Engine) Compute(ctx context.Context, orderID int64, override *int) (*Result, error) {
	order, err := e.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	maxConcurrent, err := e.capacity.MaxConcurrent(ctx, order.TruckID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve capacity for truck %d: %w", order.TruckID, err)
	}
	if override != nil && *override > 0 {
		maxConcurrent = *override
	}

	queueDelay, err := e.queueDelay(ctx, order.TruckID, maxConcurrent, orderID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	ownPrep, err := e.ownPrepMinutes(ctx, orderItemsToPreview(order.Items))
	if err != nil {
		return nil, err
	}

	result := &Result{
		QueueDelayMinutes: queueDelay,
		OwnPrepMinutes:    ownPrep,
		TotalMinutes:      queueDelay + ownPrep,
		MaxConcurrent:     maxConcurrent,
		ComputedAt:        time.Now().UTC(),
	}

	record := &model.OrderEstimate{
		OrderID:           orderID,
		QueueDelayMinutes: result.QueueDelayMinutes,
		OwnPrepMinutes:    result.OwnPrepMinutes,
		TotalMinutes:      result.TotalMinutes,
		MaxConcurrent:     result.MaxConcurrent,
		ComputedAt:        result.ComputedAt,
	}
	if err := e.store.UpsertOrderEstimate(ctx, record); err != nil {
		return nil, err
	}
	return result, nil
}

// PreviewOrder estimates the wait for a hypothetical order before it is
// placed: total own-prep time divided by the truck's capacity, rounded up
// to a whole minute. Unlike Compute it treats capacity as parallelizable
// throughput and does not inspect live load; there is no order to exclude
// yet. Nothing is persisted.
func (e *Engine) PreviewOrder(ctx context.Context, truckID int64, items []PreviewItem) (int, error) {
	if len(items) == 0 {
		return 0, ErrNoItems
	}
	if _, err := e.store.GetTruck(ctx, truckID); err != nil {
		return 0, err
	}

	maxConcurrent, err := e.capacity.MaxConcurrent(ctx, truckID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve capacity for truck %d: %w", truckID, err)
	}

	totalPrep, err := e.ownPrepMinutes(ctx, items)
	if err != nil {
		return 0, err
	}

	return int(math.Ceil(totalPrep / float64(maxConcurrent))), nil
}

// PreviewWait estimates, in whole minutes, how long a brand-new order at
// the truck would wait for a preparation slot. Its item list is unknown,
// so only the queue-delay half of the estimate applies.
func (e *Engine) PreviewWait(ctx context.Context, truckID int64) (int, error) {
	if _, err := e.store.GetTruck(ctx, truckID); err != nil {
		return 0, err
	}

	maxConcurrent, err := e.capacity.MaxConcurrent(ctx, truckID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve capacity for truck %d: %w", truckID, err)
	}

	queueDelay, err := e.queueDelay(ctx, truckID, maxConcurrent, 0, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return int(math.Ceil(queueDelay)), nil
}

// queueDelay computes minutes until a preparation slot frees up for the
// truck. excludeOrderID removes the order being estimated from the active
// set (it does not wait on itself); zero excludes nothing. Returns 0 when
// a slot is already free. The active-order snapshot can be stale by the
// time the result is persisted; the estimate is advisory and recomputed
// often, so no lock is taken.
func (e *Engine) queueDelay(ctx context.Context, truckID int64, maxConcurrent int, excludeOrderID int64, now time.Time) (float64, error) {
	preparing, err := e.store.ListOrdersByTruckAndStatus(ctx, truckID, model.StatusPreparing)
	if err != nil {
		return 0, err
	}

	active := preparing[:0]
	for _, o := range preparing {
		if o.ID != excludeOrderID {
			active = append(active, o)
		}
	}

	if len(active) < maxConcurrent {
		return 0, nil
	}

	minRemaining := math.Inf(1)
	for _, o := range active {
		remaining, err := e.remainingMinutes(ctx, &o, now)
		if err != nil {
			return 0, err
		}
		if remaining < minRemaining {
			minRemaining = remaining
		}
	}
	if math.IsInf(minRemaining, 1) {
		return 0, nil
	}
	return minRemaining, nil
}

// remainingMinutes approximates how much longer a preparing order will
// occupy its slot: the average prep time of its first item minus the time
// it has already been preparing, floored at zero.
func (e *Engine) remainingMinutes(ctx context.Context, order *model.Order, now time.Time) (float64, error) {
	if len(order.Items) == 0 {
		return 0, nil
	}

	avg, err := e.stats.Average(ctx, order.Items[0].MenuItemID)
	if err != nil {
		return 0, err
	}

	startedAt, ok := statusInstant(order.StatusTimestamps, model.StatusPreparing)
	if !ok {
		// No recorded start; assume the full average remains.
		return avg, nil
	}

	elapsed := now.Sub(startedAt).Minutes()
	return math.Max(avg-elapsed, 0), nil
}

// ownPrepMinutes sums average prep time times quantity over the items.
func (e *Engine) ownPrepMinutes(ctx context.Context, items []PreviewItem) (float64, error) {
	var total float64
	for _, item := range items {
		avg, err := e.stats.Average(ctx, item.MenuItemID)
		if err != nil {
			return 0, err
		}
		total += avg * float64(item.Quantity)
	}
	return total, nil
}

func orderItemsToPreview(items []model.OrderItem) []PreviewItem {
	out := make([]PreviewItem, len(items))
	for i, it := range items {
		out[i] = PreviewItem{MenuItemID: it.MenuItemID, Quantity: it.Quantity}
	}
	return out
}

func statusInstant(timestamps []model.OrderStatusTimestamp, status model.OrderStatus) (time.Time, bool) {
	for _, ts := range timestamps {
		if ts.Status == status {
			return ts.RecordedAt, true
		}
	}
	return time.Time{}, false
}

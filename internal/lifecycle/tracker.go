// Package lifecycle drives order status transitions and the bookkeeping
// tied to them: status timestamps, estimate refreshes, and feeding observed
// preparation durations back into the rolling statistics.
package lifecycle

import (
	"context"
	"fmt"
	"log"
	"time"

	"foodtruck-market-backend/internal/estimate"
	"foodtruck-market-backend/internal/model"
	"foodtruck-market-backend/internal/stats"
	"foodtruck-market-backend/internal/store"
)

// ErrInvalidTransition rejects status changes that skip ahead, regress, or
// repeat the current status.
type ErrInvalidTransition struct {
	From, To model.OrderStatus
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid order status transition %s -> %s", e.From, e.To)
}

// Dispatcher delivers an "order status changed" notification. Delivery is
// fire and forget; the tracker never waits on or fails with it.
type Dispatcher interface {
	Dispatch(orderID int64, status model.OrderStatus)
}

// NopDispatcher discards notifications. Used when push is not configured.
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(int64, model.OrderStatus) {}

// Tracker advances orders through pending -> preparing -> ready ->
// completed and performs each transition's side effects.
type Tracker struct {
	store      store.Store
	engine     *estimate.Engine
	stats      *stats.Recorder
	dispatcher Dispatcher
}

// NewTracker creates a lifecycle tracker.
func NewTracker(s store.Store, engine *estimate.Engine, recorder *stats.Recorder, dispatcher Dispatcher) *Tracker {
	if dispatcher == nil {
		dispatcher = NopDispatcher{}
	}
	return &Tracker{store: s, engine: engine, stats: recorder, dispatcher: dispatcher}
}

// Advance moves an order to the next status, recording the instant it was
// entered. On entering "preparing" the persisted estimate is recomputed:
// the queue picture has changed now that this order occupies or awaits a
// slot. On entering "ready" the observed preparation duration is fed into
// the stats store and the estimate is zeroed.
func (t *Tracker) Advance(ctx context.Context, orderID int64, next model.OrderStatus) (*model.Order, error) {
	if !next.Valid() {
		return nil, &ErrInvalidTransition{To: next}
	}

	order, err := t.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanAdvanceTo(next) {
		return nil, &ErrInvalidTransition{From: order.Status, To: next}
	}

	now := time.Now().UTC()
	if err := t.store.SetOrderStatus(ctx, orderID, next, now); err != nil {
		return nil, err
	}

	switch next {
	case model.StatusPreparing:
		if _, err := t.engine.Compute(ctx, orderID, nil); err != nil {
			// The transition itself stands; the estimate will be
			// refreshed on the next computation.
			log.Printf("lifecycle: failed to recompute estimate for order %d: %v", orderID, err)
		}
	case model.StatusReady:
		t.recordPrepDurations(ctx, order, now)
		if err := t.store.ResetOrderEstimate(ctx, orderID, now); err != nil {
			log.Printf("lifecycle: failed to reset estimate for order %d: %v", orderID, err)
		}
	}

	t.dispatcher.Dispatch(orderID, next)

	return t.store.GetOrder(ctx, orderID)
}

// recordPrepDurations credits the order's end-to-end preparation time to
// every item in it. A multi-item order's single duration is attributed to
// each item individually rather than apportioned; the per-item samples are
// a deliberate coarse signal. Orders fast-forwarded through statuses have
// no preparing timestamp, in which case recording is skipped entirely.
func (t *Tracker) recordPrepDurations(ctx context.Context, order *model.Order, readyAt time.Time) {
	startedAt, ok, err := t.store.GetStatusTimestamp(ctx, order.ID, model.StatusPreparing)
	if err != nil {
		log.Printf("lifecycle: could not read preparing timestamp for order %d: %v", order.ID, err)
		return
	}
	if !ok {
		log.Printf("lifecycle: order %d reached ready without a preparing timestamp, skipping stats", order.ID)
		return
	}

	delta := readyAt.Sub(startedAt).Minutes()
	for _, item := range order.Items {
		t.stats.Record(ctx, item.MenuItemID, delta)
	}
}

// Package stats maintains per-menu-item rolling preparation-time
// statistics: an append-only history of observed durations and a running
// average the estimate engine reads.
package stats

import (
	"context"
	"errors"
	"log"
	"time"

	"foodtruck-market-backend/internal/store"
)

// Recorder records observed preparation durations and serves averages,
// falling back to the configured default for items with no history yet.
type Recorder struct {
	store              store.Store
	defaultPrepMinutes float64
}

// NewRecorder creates a Recorder with the given cold-start default.
func NewRecorder(s store.Store, defaultPrepMinutes float64) *Recorder {
	return &Recorder{store: s, defaultPrepMinutes: defaultPrepMinutes}
}

// Record appends an observed duration to a menu item's history and folds
// it into the running average. A bad menu item reference or a failed write
// is logged and swallowed: one item's stats must never abort the caller's
// larger workflow, and sibling items are recorded independently.
func (r *Recorder) Record(ctx context.Context, menuItemID int64, minutes float64) {
	if minutes <= 0 {
		log.Printf("stats: skipping non-positive duration %.2f for menu item %d", minutes, menuItemID)
		return
	}

	exists, err := r.store.MenuItemExists(ctx, menuItemID)
	if err != nil {
		log.Printf("stats: could not verify menu item %d: %v", menuItemID, err)
		return
	}
	if !exists {
		log.Printf("stats: menu item %d does not exist, skipping observation", menuItemID)
		return
	}

	if err := r.store.AppendPrepObservation(ctx, menuItemID, minutes, time.Now().UTC()); err != nil {
		log.Printf("stats: failed to record duration for menu item %d: %v", menuItemID, err)
	}
}

// Average returns the running mean preparation time for a menu item, or
// the configured default when no duration has been observed yet.
func (r *Recorder) Average(ctx context.Context, menuItemID int64) (float64, error) {
	stat, err := r.store.GetPrepStat(ctx, menuItemID)
	if errors.Is(err, store.ErrStatsNotFound) {
		return r.defaultPrepMinutes, nil
	}
	if err != nil {
		return 0, err
	}
	return stat.AvgMinutes, nil
}

package estimate

import (
	"context"
	"errors"

	"foodtruck-market-backend/internal/store"
)

// CapacityProvider resolves a truck's maximum concurrent-preparation
// slots. A truck without a configured record (or with a non-positive one)
// gets the system-wide default; absence is never an error.
type CapacityProvider struct {
	store        store.Store
	defaultSlots int
}

// NewCapacityProvider creates a provider with the given default slot count.
func NewCapacityProvider(s store.Store, defaultSlots int) *CapacityProvider {
	return &CapacityProvider{store: s, defaultSlots: defaultSlots}
}

// MaxConcurrent returns the truck's configured capacity, else the default.
func (p *CapacityProvider) MaxConcurrent(ctx context.Context, truckID int64) (int, error) {
	capacity, err := p.store.GetTruckCapacity(ctx, truckID)
	if errors.Is(err, store.ErrCapacityNotFound) {
		return p.defaultSlots, nil
	}
	if err != nil {
		return 0, err
	}
	if capacity.MaxConcurrent <= 0 {
		return p.defaultSlots, nil
	}
	return capacity.MaxConcurrent, nil
}

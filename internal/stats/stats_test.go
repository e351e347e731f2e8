package stats

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"foodtruck-market-backend/internal/db"
	"foodtruck-market-backend/internal/model"
	"foodtruck-market-backend/internal/store"
)

var dbSeq atomic.Int64

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:stats_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(testDB))
	return store.NewGormStore(testDB)
}

func seedMenuItem(t *testing.T, s store.Store, id int64) {
	t.Helper()
	item := model.MenuItem{ID: id, TruckID: 1, Name: "Taco", Price: 5}
	require.NoError(t, s.DB().Create(&item).Error)
}

func TestAverageColdStartDefault(t *testing.T) {
	s := newTestStore(t)
	seedMenuItem(t, s, 1)
	recorder := NewRecorder(s, 10)
	ctx := context.Background()

	avg, err := recorder.Average(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, 10.0, avg, "item with no history should use the configured default")

	recorder.Record(ctx, 1, 7)

	avg, err = recorder.Average(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, 7.0, avg, "a single observation becomes the average")
}

func TestRunningAverage(t *testing.T) {
	s := newTestStore(t)
	seedMenuItem(t, s, 1)
	seedMenuItem(t, s, 2)
	recorder := NewRecorder(s, 10)
	ctx := context.Background()

	for _, m := range []float64{10, 20, 30} {
		recorder.Record(ctx, 1, m)
	}
	// Same durations in a different order.
	for _, m := range []float64{30, 10, 20} {
		recorder.Record(ctx, 2, m)
	}

	avg1, err := recorder.Average(ctx, 1)
	assert.NoError(t, err)
	assert.InDelta(t, 20.0, avg1, 1e-9)

	avg2, err := recorder.Average(ctx, 2)
	assert.NoError(t, err)
	assert.InDelta(t, avg1, avg2, 1e-9, "recording order must not change the average")

	obs, err := s.ListPrepObservations(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, obs, 3, "history is append-only, one row per observation")
}

func TestRecordUnknownMenuItemIsSwallowed(t *testing.T) {
	s := newTestStore(t)
	recorder := NewRecorder(s, 10)
	ctx := context.Background()

	// Must not panic or error the caller's workflow.
	recorder.Record(ctx, 999, 5)

	_, err := s.GetPrepStat(ctx, 999)
	assert.ErrorIs(t, err, store.ErrStatsNotFound)
}

func TestRecordNonPositiveDurationSkipped(t *testing.T) {
	s := newTestStore(t)
	seedMenuItem(t, s, 1)
	recorder := NewRecorder(s, 10)
	ctx := context.Background()

	recorder.Record(ctx, 1, 0)
	recorder.Record(ctx, 1, -3)

	_, err := s.GetPrepStat(ctx, 1)
	assert.ErrorIs(t, err, store.ErrStatsNotFound)
}

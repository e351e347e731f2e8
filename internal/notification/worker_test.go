package notification

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"foodtruck-market-backend/internal/db"
	"foodtruck-market-backend/internal/model"
	"foodtruck-market-backend/internal/store"
)

var dbSeq atomic.Int64

// mockSender records sent notifications and answers with a fixed status.
type mockSender struct {
	sent       []string
	endpoints  []string
	statusCode int
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, _ *webpush.Options) (*http.Response, error) {
	m.sent = append(m.sent, string(payload))
	m.endpoints = append(m.endpoints, sub.Endpoint)
	code := m.statusCode
	if code == 0 {
		code = http.StatusCreated
	}
	return &http.Response{
		StatusCode: code,
		Body:       http.NoBody,
	}, nil
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:notification_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(testDB))
	return store.NewGormStore(testDB)
}

func seedOrderWithSubscriptions(t *testing.T, s store.Store, subs int) *model.Order {
	t.Helper()
	order := model.Order{ID: 1, CustomerID: 7, TruckID: 1, Status: model.StatusPreparing}
	require.NoError(t, s.DB().Create(&order).Error)
	for i := 0; i < subs; i++ {
		sub := model.PushSubscription{
			Endpoint:   fmt.Sprintf("https://push.example/%d", i),
			CustomerID: 7,
			P256DH:     "key",
			Auth:       "auth",
		}
		require.NoError(t, s.DB().Create(&sub).Error)
	}
	return &order
}

func TestNotifyFansOutToCustomerSubscriptions(t *testing.T) {
	s := newTestStore(t)
	seedOrderWithSubscriptions(t, s, 2)

	pool := NewWorkerPool(1, s, &webpush.Options{})
	sender := &mockSender{}
	pool.sender = sender

	pool.notifyForOrder(context.Background(), StatusChange{OrderID: 1, Status: model.StatusReady})

	assert.Len(t, sender.sent, 2)
	for _, msg := range sender.sent {
		assert.True(t, strings.Contains(msg, "ready"), "message should mention the new status: %q", msg)
	}
}

func TestNotifyPrunesExpiredSubscriptions(t *testing.T) {
	s := newTestStore(t)
	seedOrderWithSubscriptions(t, s, 1)

	pool := NewWorkerPool(1, s, &webpush.Options{})
	pool.sender = &mockSender{statusCode: http.StatusGone}

	pool.notifyForOrder(context.Background(), StatusChange{OrderID: 1, Status: model.StatusReady})

	subs, err := s.ListSubscriptionsByCustomer(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, subs, "a 410 from the push service deletes the subscription")
}

func TestNotifyUnknownOrderIsSwallowed(t *testing.T) {
	s := newTestStore(t)
	pool := NewWorkerPool(1, s, &webpush.Options{})
	sender := &mockSender{}
	pool.sender = sender

	pool.notifyForOrder(context.Background(), StatusChange{OrderID: 99, Status: model.StatusReady})

	assert.Empty(t, sender.sent)
}

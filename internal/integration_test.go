package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"foodtruck-market-backend/config"
	"foodtruck-market-backend/internal/api"
	"foodtruck-market-backend/internal/db"
	"foodtruck-market-backend/internal/estimate"
	"foodtruck-market-backend/internal/lifecycle"
	"foodtruck-market-backend/internal/model"
	"foodtruck-market-backend/internal/stats"
	"foodtruck-market-backend/internal/store"
)

type testEnv struct {
	db     *gorm.DB
	store  store.Store
	router *gin.Engine
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	testDB, err := gorm.Open(sqlite.Open("file:integration_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(testDB))

	appStore := store.NewGormStore(testDB)
	recorder := stats.NewRecorder(appStore, 10)
	capacity := estimate.NewCapacityProvider(appStore, 5)
	engine := estimate.NewEngine(appStore, recorder, capacity)
	tracker := lifecycle.NewTracker(appStore, engine, recorder, nil)

	serverCfg := &config.ServerConfig{
		Port:            0,
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTLSeconds: 1,
	}
	router := api.NewRouter(serverCfg, appStore, engine, tracker, nil)

	// Seed a city, a truck, a menu and a customer.
	require.NoError(t, testDB.Create(&model.Customer{ID: 1, Name: "Dana", City: "Austin"}).Error)
	require.NoError(t, testDB.Create(&model.Truck{ID: 1, OwnerID: 2, Name: "Taco Truck", City: "Austin"}).Error)
	require.NoError(t, testDB.Create(&model.Customer{ID: 3, Name: "Remote", City: "Dallas"}).Error)
	for i, name := range []string{"Taco", "Burrito"} {
		require.NoError(t, testDB.Create(&model.MenuItem{ID: int64(i + 1), TruckID: 1, Name: name, Price: 8}).Error)
	}

	return &testEnv{db: testDB, store: appStore, router: router}
}

func (env *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest(method, path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	env.router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	}
	return w, decoded
}

// TestOrderWaitLifecycle walks an order through placement, preparing and
// ready over the HTTP surface, verifying the estimate and stats at each
// step.
func TestOrderWaitLifecycle(t *testing.T) {
	env := setupEnv(t)

	// Capacity management.
	w, _ := env.do(t, "PUT", "/api/trucks/capacity", `{"truck_id":1,"max_concurrent":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, body := env.do(t, "GET", "/api/trucks/1/capacity", "")
	require.Equal(t, http.StatusOK, w.Code)
	capacity := body["capacity"].(map[string]any)
	assert.Equal(t, float64(1), capacity["max_concurrent"])

	w, _ = env.do(t, "GET", "/api/trucks/999/capacity", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "unset capacity reads as absent, not as the default")

	// Upfront preview: no stats yet, so both items use the 10 minute
	// default. ceil((10*2 + 10*1) / 1) = 30.
	w, body = env.do(t, "POST", "/api/orders/estimate-preview",
		`{"truck_id":1,"items":[{"menu_item_id":1,"quantity":2},{"menu_item_id":2,"quantity":1}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(30), body["estimated_minutes"])

	// Cross-city placement is rejected.
	w, _ = env.do(t, "POST", "/api/orders",
		`{"customer_id":3,"truck_id":1,"items":[{"menu_item_id":1,"quantity":1}],"total_price":8}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Place the order; the initial estimate is computed and persisted.
	w, body = env.do(t, "POST", "/api/orders",
		`{"customer_id":1,"truck_id":1,"items":[{"menu_item_id":1,"quantity":1},{"menu_item_id":2,"quantity":1}],"total_price":16}`)
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := int64(body["order"].(map[string]any)["id"].(float64))
	initialEstimate := body["estimate"].(map[string]any)
	assert.Equal(t, float64(0), initialEstimate["queue_delay_minutes"], "idle truck: slot free immediately")
	assert.Equal(t, float64(20), initialEstimate["own_prep_minutes"])
	assert.Equal(t, float64(20), initialEstimate["total_minutes"])
	assert.Equal(t, float64(1), initialEstimate["max_concurrent"])

	orderPath := fmt.Sprintf("/api/orders/%d", orderID)

	// The persisted record matches what the caller saw.
	w, body = env.do(t, "GET", orderPath+"/estimate", "")
	require.Equal(t, http.StatusOK, w.Code)
	persisted := body["estimate"].(map[string]any)
	assert.Equal(t, float64(20), persisted["total_minutes"])

	// Start preparing. The estimate refreshes; the order itself does not
	// wait on its own slot.
	w, body = env.do(t, "PUT", orderPath+"/status", `{"status":"preparing"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "preparing", body["status"])

	// A second hypothetical order now queues behind it.
	w, body = env.do(t, "GET", "/api/orders/preview-wait/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(10), body["wait_minutes"], "first item averages the 10 minute default, just started")

	// A regression is rejected and leaves the status untouched.
	w, _ = env.do(t, "PUT", orderPath+"/status", `{"status":"pending"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Pretend preparation started 12 minutes ago, then mark ready.
	require.NoError(t, env.db.Model(&model.OrderStatusTimestamp{}).
		Where("order_id = ? AND status = ?", orderID, model.StatusPreparing).
		Update("recorded_at", time.Now().UTC().Add(-12*time.Minute)).Error)

	w, body = env.do(t, "PUT", orderPath+"/status", `{"status":"ready"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", body["status"])

	// The wait is over.
	w, body = env.do(t, "GET", orderPath+"/estimate", "")
	require.Equal(t, http.StatusOK, w.Code)
	persisted = body["estimate"].(map[string]any)
	assert.Equal(t, float64(0), persisted["total_minutes"])

	// Both items were credited with the observed 12 minute duration.
	for _, menuItemID := range []int64{1, 2} {
		var obs []model.PrepObservation
		require.NoError(t, env.db.Where("menu_item_id = ?", menuItemID).Find(&obs).Error)
		require.Len(t, obs, 1)
		assert.InDelta(t, 12.0, obs[0].Minutes, 0.05)
	}

	// Future previews now use the learned average instead of the default:
	// ceil(12ish / 1) = 12 or 13 depending on sub-second elapsed time.
	w, body = env.do(t, "POST", "/api/orders/estimate-preview",
		`{"truck_id":1,"items":[{"menu_item_id":1,"quantity":1}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 12.0, body["estimated_minutes"], 1.0)

	// Complete the order.
	w, body = env.do(t, "PUT", orderPath+"/status", `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", body["status"])
}

// TestEstimateRecomputeWithOverride verifies the one-shot capacity
// override on the recompute endpoint.
func TestEstimateRecomputeWithOverride(t *testing.T) {
	env := setupEnv(t)

	w, body := env.do(t, "POST", "/api/orders",
		`{"customer_id":1,"truck_id":1,"items":[{"menu_item_id":1,"quantity":1}],"total_price":8}`)
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := int64(body["order"].(map[string]any)["id"].(float64))

	path := fmt.Sprintf("/api/orders/%d/estimate", orderID)

	w, body = env.do(t, "POST", path, `{"max_concurrent":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	est := body["estimate"].(map[string]any)
	assert.Equal(t, float64(2), est["max_concurrent"], "override captured in the snapshot")

	// Without a body the stored capacity (config default here) applies.
	w, body = env.do(t, "POST", path, "")
	require.Equal(t, http.StatusOK, w.Code)
	est = body["estimate"].(map[string]any)
	assert.Equal(t, float64(5), est["max_concurrent"])

	w, _ = env.do(t, "POST", "/api/orders/999/estimate", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = env.do(t, "GET", "/api/orders/999/estimate", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

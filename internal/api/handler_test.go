package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// Binding failures are rejected before any dependency is touched, so a
// handler with nil deps is enough here.
func setupValidationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(nil, nil, nil, nil)
	r.POST("/api/orders/:id/estimate", handler.RecomputeEstimate)
	r.POST("/api/orders/estimate-preview", handler.PreviewEstimate)
	r.PUT("/api/trucks/capacity", handler.SetCapacity)
	r.PUT("/api/subscriptions", handler.PutSubscription)
	r.GET("/api/vapid_public_key", handler.GetVAPIDPublicKey)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRecomputeEstimateRejectsBadMaxConcurrent(t *testing.T) {
	router := setupValidationRouter()

	w := doJSON(router, "POST", "/api/orders/1/estimate", `{"max_concurrent":"five"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "POST", "/api/orders/1/estimate", `{"max_concurrent":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "POST", "/api/orders/abc/estimate", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewEstimateRejectsMissingTruck(t *testing.T) {
	router := setupValidationRouter()

	w := doJSON(router, "POST", "/api/orders/estimate-preview", `{"items":[{"menu_item_id":1,"quantity":1}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetCapacityRejectsBadInput(t *testing.T) {
	router := setupValidationRouter()

	w := doJSON(router, "PUT", "/api/trucks/capacity", `{"truck_id":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "PUT", "/api/trucks/capacity", `{"truck_id":1,"max_concurrent":-2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPutSubscriptionRejectsMissingFields(t *testing.T) {
	router := setupValidationRouter()

	w := doJSON(router, "PUT", "/api/subscriptions", `{"endpoint":"https://push.example/1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVAPIDKeyUnconfigured(t *testing.T) {
	router := setupValidationRouter()

	w := doJSON(router, "GET", "/api/vapid_public_key", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

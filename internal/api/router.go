package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"foodtruck-market-backend/config"
	"foodtruck-market-backend/internal/estimate"
	"foodtruck-market-backend/internal/lifecycle"
	"foodtruck-market-backend/internal/mw"
	"foodtruck-market-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, s store.Store, engine *estimate.Engine, tracker *lifecycle.Tracker, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, engine, tracker, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Trucks and capacity
		api.GET("/trucks", caching, handler.GetTrucks)
		api.PUT("/trucks/capacity", handler.SetCapacity)
		api.GET("/trucks/:truck_id/capacity", handler.GetCapacity)

		// Orders and lifecycle
		api.POST("/orders", handler.PlaceOrder)
		api.GET("/orders/:id", handler.GetOrder)
		api.GET("/orders/customer/:customer_id", handler.GetCustomerOrders)
		api.GET("/orders/truck/:truck_id", handler.GetTruckOrders)
		api.PUT("/orders/:id/status", handler.UpdateOrderStatus)

		// Estimates
		api.POST("/orders/:id/estimate", handler.RecomputeEstimate)
		api.GET("/orders/:id/estimate", handler.GetEstimate)
		api.POST("/orders/estimate-preview", handler.PreviewEstimate)
		api.GET("/orders/preview-wait/:truck_id", handler.PreviewWait)

		// Push subscriptions
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}

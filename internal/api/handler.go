package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"foodtruck-market-backend/internal/estimate"
	"foodtruck-market-backend/internal/lifecycle"
	"foodtruck-market-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	engine  *estimate.Engine
	tracker *lifecycle.Tracker
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, engine *estimate.Engine, tracker *lifecycle.Tracker, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		engine:  engine,
		tracker: tracker,
		webpush: webpushOptions,
	}
}

// abortWithError maps domain errors to HTTP statuses. Missing entities are
// 404s, rejected input is a 400, an out-of-order lifecycle transition is a
// 409; everything else is a 500.
func abortWithError(c *gin.Context, err error) {
	var invalid *lifecycle.ErrInvalidTransition
	switch {
	case errors.Is(err, store.ErrOrderNotFound),
		errors.Is(err, store.ErrTruckNotFound),
		errors.Is(err, store.ErrCustomerNotFound),
		errors.Is(err, store.ErrCapacityNotFound),
		errors.Is(err, store.ErrEstimateNotFound),
		errors.Is(err, store.ErrSubscriptionNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, estimate.ErrNoItems):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &invalid):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

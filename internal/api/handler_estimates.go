package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodtruck-market-backend/internal/estimate"
)

type recomputeEstimateRequest struct {
	// MaxConcurrent overrides the stored truck capacity for this one
	// computation. Optional; when present it must be a positive number.
	// Non-numeric JSON fails binding before any computation runs.
	MaxConcurrent *int `json:"max_concurrent"`
}

// RecomputeEstimate handles POST /api/orders/:id/estimate.
func (h *Handler) RecomputeEstimate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req recomputeEstimateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_concurrent must be a number"})
			return
		}
		if req.MaxConcurrent != nil && *req.MaxConcurrent <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_concurrent must be positive"})
			return
		}
	}

	result, err := h.engine.Compute(c.Request.Context(), id, req.MaxConcurrent)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"estimate": result})
}

// GetEstimate handles GET /api/orders/:id/estimate, returning the last
// persisted estimate record.
func (h *Handler) GetEstimate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	est, err := h.store.GetOrderEstimate(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"estimate": est})
}

type previewEstimateRequest struct {
	TruckID   int64                  `json:"truck_id" binding:"required"`
	Items     []estimate.PreviewItem `json:"items"`
	OrderType string                 `json:"order_type"`
}

// PreviewEstimate handles POST /api/orders/estimate-preview: an upfront
// estimate for an order that has not been placed, rounded up to a whole
// minute. Nothing is persisted.
func (h *Handler) PreviewEstimate(c *gin.Context) {
	var req previewEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	minutes, err := h.engine.PreviewOrder(c.Request.Context(), req.TruckID, req.Items)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"estimated_minutes": minutes})
}

// PreviewWait handles GET /api/orders/preview-wait/:truck_id: the
// queue-delay-only wait for a hypothetical new order at the truck.
func (h *Handler) PreviewWait(c *gin.Context) {
	id, ok := paramID(c, "truck_id")
	if !ok {
		return
	}

	minutes, err := h.engine.PreviewWait(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wait_minutes": minutes})
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetTrucks handles GET /api/trucks, listing trucks with their menu sizes.
func (h *Handler) GetTrucks(c *gin.Context) {
	summaries, err := h.store.ListTruckSummaries(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

type setCapacityRequest struct {
	TruckID       int64 `json:"truck_id" binding:"required"`
	MaxConcurrent int   `json:"max_concurrent" binding:"required,gt=0"`
}

// SetCapacity handles PUT /api/trucks/capacity, upserting a truck's
// concurrent-preparation capacity.
func (h *Handler) SetCapacity(c *gin.Context) {
	var req setCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "truck_id and a positive max_concurrent are required"})
		return
	}

	if _, err := h.store.GetTruck(c.Request.Context(), req.TruckID); err != nil {
		abortWithError(c, err)
		return
	}

	capacity, err := h.store.UpsertTruckCapacity(c.Request.Context(), req.TruckID, req.MaxConcurrent)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"capacity": capacity})
}

// GetCapacity handles GET /api/trucks/:truck_id/capacity. A truck with no
// configured record answers 404; the estimation engine itself falls back
// to the system default instead.
func (h *Handler) GetCapacity(c *gin.Context) {
	id, ok := paramID(c, "truck_id")
	if !ok {
		return
	}

	capacity, err := h.store.GetTruckCapacity(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"capacity": capacity})
}

package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"foodtruck-market-backend/internal/model"
)

type placeOrderItem struct {
	MenuItemID int64   `json:"menu_item_id" binding:"required"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity" binding:"required,gt=0"`
	Price      float64 `json:"price"`
}

type placeOrderRequest struct {
	CustomerID int64            `json:"customer_id" binding:"required"`
	TruckID    int64            `json:"truck_id" binding:"required"`
	Items      []placeOrderItem `json:"items" binding:"required,min=1,dive"`
	TotalPrice float64          `json:"total_price"`
	OrderType  string           `json:"order_type"`
}

// PlaceOrder handles POST /api/orders: creates a pending order and
// computes its initial wait estimate.
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.store.GetCustomer(c.Request.Context(), req.CustomerID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	truck, err := h.store.GetTruck(c.Request.Context(), req.TruckID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if customer.City != truck.City {
		c.JSON(http.StatusBadRequest, gin.H{"error": "you can only order from trucks in your city"})
		return
	}

	orderType := req.OrderType
	if orderType == "" {
		orderType = "pickup"
	}

	order := model.Order{
		CustomerID: req.CustomerID,
		TruckID:    req.TruckID,
		TotalPrice: req.TotalPrice,
		OrderType:  orderType,
		Status:     model.StatusPending,
	}
	for _, item := range req.Items {
		order.Items = append(order.Items, model.OrderItem{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			Price:      item.Price,
		})
	}

	if err := h.store.CreateOrder(c.Request.Context(), &order); err != nil {
		abortWithError(c, err)
		return
	}

	result, err := h.engine.Compute(c.Request.Context(), order.ID, nil)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": order, "estimate": result})
}

// GetOrder handles GET /api/orders/:id.
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := h.store.GetOrder(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetCustomerOrders handles GET /api/orders/customer/:customer_id.
func (h *Handler) GetCustomerOrders(c *gin.Context) {
	id, ok := paramID(c, "customer_id")
	if !ok {
		return
	}

	orders, err := h.store.ListOrdersByCustomer(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetTruckOrders handles GET /api/orders/truck/:truck_id.
func (h *Handler) GetTruckOrders(c *gin.Context) {
	id, ok := paramID(c, "truck_id")
	if !ok {
		return
	}

	orders, err := h.store.ListOrdersByTruck(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

// UpdateOrderStatus handles PUT /api/orders/:id/status, driving the order
// lifecycle tracker.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.tracker.Advance(c.Request.Context(), id, req.Status)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// paramID parses a positive integer path parameter, responding 400 itself
// on failure.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

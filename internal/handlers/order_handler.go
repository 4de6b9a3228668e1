package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"grocery-mart/internal/middleware"
	"grocery-mart/internal/models"
	"grocery-mart/internal/service"
)

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) ListMine(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	orders, err := h.orders.ListMine(ctx, middleware.SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders, "total": len(orders)})
}

func (h *OrderHandler) Get(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.orders.Get(ctx, middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListAll filtra por payment_status, order_status y user_id
func (h *OrderHandler) ListAll(c *gin.Context) {
	filter := models.OrderFilter{
		UserID:        c.Query("user_id"),
		PaymentStatus: models.PaymentStatus(c.Query("payment_status")),
	}
	if raw := c.Query("order_status"); raw != "" {
		status, ok := models.ParseOrderStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown order status"})
			return
		}
		filter.OrderStatus = status
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	orders, err := h.orders.ListAll(ctx, middleware.SessionFrom(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders, "total": len(orders)})
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHandler) AdvanceStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, ok := models.ParseOrderStatus(req.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown order status"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.orders.AdvanceStatus(ctx, middleware.SessionFrom(c), c.Param("id"), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"grocery-mart/internal/middleware"
	"grocery-mart/internal/service"
)

type CheckoutHandler struct {
	orders        *service.OrderService
	checkout      *service.CheckoutService
	redirectDelay time.Duration
}

func NewCheckoutHandler(orders *service.OrderService, checkout *service.CheckoutService, redirectDelay time.Duration) *CheckoutHandler {
	return &CheckoutHandler{orders: orders, checkout: checkout, redirectDelay: redirectDelay}
}

// Checkout crea o reutiliza la orden pendiente del carrito
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.orders.Checkout(ctx, middleware.SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *CheckoutHandler) Revalidate(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.orders.RevalidateStock(ctx, middleware.SessionFrom(c), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Pay confirma un cobro ya capturado por la pasarela
func (h *CheckoutHandler) Pay(c *gin.Context) {
	var req service.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	receipt, err := h.checkout.ConfirmPayment(ctx, middleware.SessionFrom(c), c.Param("orderId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":             receipt.Order,
		"payment":           receipt.Payment,
		"redirect_after_ms": h.redirectDelay.Milliseconds(),
	})
}

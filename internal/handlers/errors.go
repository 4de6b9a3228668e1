package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"grocery-mart/internal/repository"
	"grocery-mart/internal/service"
)

const requestTimeout = 10 * time.Second

// requestContext limita cada operación derivada de la petición
func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// respondError traduce errores de dominio a códigos HTTP
func respondError(c *gin.Context, err error) {
	var (
		validation *service.ValidationError
		oos        *service.OutOfStockError
		short      *service.InsufficientStockError
	)

	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error(), "field": validation.Field})
	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrAddressNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &oos):
		c.JSON(http.StatusConflict, gin.H{
			"error":      service.ErrOutOfStock.Error(),
			"message":    oos.Error(),
			"product_id": oos.ProductID,
			"available":  oos.Available,
		})
	case errors.As(err, &short):
		c.JSON(http.StatusConflict, gin.H{
			"error":      service.ErrInsufficientStock.Error(),
			"message":    short.Error(),
			"product_id": short.ProductID,
			"requested":  short.Requested,
			"available":  short.Available,
		})
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrNotInCart),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrAmountMismatch),
		errors.Is(err, repository.ErrOrderNotPending):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUndoExpired):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAddressRequired):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

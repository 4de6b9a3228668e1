package service

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-mart/internal/models"
)

var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrForbidden         = errors.New("forbidden")
	ErrOutOfStock        = errors.New("out of stock")
	ErrInsufficientStock = errors.New("insufficient stock at payment")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNotInCart         = errors.New("product is not in the cart")
	ErrUndoExpired       = errors.New("undo window expired")
	ErrAddressRequired   = errors.New("a delivery address is required")
	ErrAmountMismatch    = errors.New("paid amount does not match the order total")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// OutOfStockError se devuelve al intentar superar el stock desde el carrito
type OutOfStockError struct {
	ProductID primitive.ObjectID
	Name      string
	Available int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("%s: only %d available", e.Name, e.Available)
}

func (e *OutOfStockError) Is(target error) bool { return target == ErrOutOfStock }

// InsufficientStockError aborta la transacción de pago completa
type InsufficientStockError struct {
	ProductID primitive.ObjectID
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.Name, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func requireSession(s *models.Session) error {
	if s == nil || s.UserID == "" {
		return ErrUnauthenticated
	}
	return nil
}

func requireAdmin(s *models.Session) error {
	if err := requireSession(s); err != nil {
		return err
	}
	if !s.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// ParseID convierte un id hexadecimal en ObjectID
func ParseID(field, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, &ValidationError{Field: field, Message: "invalid id"}
	}
	return id, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"grocery-mart/internal/models"
	"grocery-mart/internal/repository"
)

const defaultPaymentMethod = "online"

type PaymentRequest struct {
	Method     string   `json:"method"`
	GatewayRef string   `json:"gateway_ref"`
	Amount     *float64 `json:"amount"`
	AddressID  string   `json:"address_id"`
}

type Receipt struct {
	Order   *models.Order   `json:"order"`
	Payment *models.Payment `json:"payment"`
}

// PaidHook se ejecuta después de confirmar un pago
type PaidHook func(ctx context.Context, order *models.Order)

type CheckoutService struct {
	products    repository.ProductStore
	carts       repository.CartStore
	orders      repository.OrderStore
	payments    repository.PaymentStore
	mostSellers repository.MostSellerStore
	addresses   *AddressService
	tx          repository.TxManager

	onPaid []PaidHook
	Now    func() time.Time
}

func NewCheckoutService(repos repository.Set, addresses *AddressService) *CheckoutService {
	return &CheckoutService{
		products:    repos.Products,
		carts:       repos.Carts,
		orders:      repos.Orders,
		payments:    repos.Payments,
		mostSellers: repos.MostSellers,
		addresses:   addresses,
		tx:          repos.Tx,
		Now:         time.Now,
	}
}

func (s *CheckoutService) OnPaid(hook PaidHook) {
	s.onPaid = append(s.onPaid, hook)
}

// ConfirmPayment registra un cobro ya capturado. El descuento de stock, los
// contadores de más vendidos, el estado de la orden, el pago y el vaciado del
// carrito se escriben en una sola transacción.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, session *models.Session, orderID string, req PaymentRequest) (*Receipt, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != session.UserID {
		return nil, ErrForbidden
	}
	if !order.Pending() {
		return nil, repository.ErrOrderNotPending
	}
	if len(order.Products) == 0 {
		return nil, ErrEmptyCart
	}
	if req.Amount != nil && math.Abs(*req.Amount-order.TotalAmount) > 0.005 {
		return nil, fmt.Errorf("%w: paid %.2f, order total %.2f", ErrAmountMismatch, *req.Amount, order.TotalAmount)
	}

	address, err := s.addresses.Resolve(ctx, session.UserID, req.AddressID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	method := req.Method
	if method == "" {
		method = defaultPaymentMethod
	}
	payment := &models.Payment{
		ID:         uuid.NewString(),
		OrderID:    order.ID,
		UserID:     session.UserID,
		Amount:     order.TotalAmount,
		Method:     method,
		GatewayRef: req.GatewayRef,
		CreatedAt:  now,
	}

	paid := order.Clone()
	paid.PaymentStatus = models.PaymentStatusPaid
	paid.OrderStatus = models.OrderStatusProcessing
	paid.SelectedAddressID = address.ID
	paid.PaymentID = payment.ID
	paid.PaidAt = &now
	paid.UpdatedAt = now

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		for _, line := range order.Products {
			if err := s.takeStock(ctx, line); err != nil {
				return err
			}
		}
		if err := s.orders.MarkPaid(ctx, paid); err != nil {
			return err
		}
		if err := s.payments.Insert(ctx, payment); err != nil {
			return err
		}
		return s.carts.Clear(ctx, session.UserID)
	})

	var short *InsufficientStockError
	if errors.As(err, &short) {
		if cerr := s.compensate(ctx, order, payment); errors.Is(cerr, repository.ErrOrderNotPending) {
			return nil, cerr
		}
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("confirming payment for %s: %w", order.ID, err)
	}

	log.Printf("💳 order %s paid by %s (%.2f)", paid.ID, session.UserID, paid.TotalAmount)
	for _, hook := range s.onPaid {
		hook(ctx, paid)
	}
	return &Receipt{Order: paid, Payment: payment}, nil
}

func (s *CheckoutService) takeStock(ctx context.Context, line models.CartLine) error {
	product, err := s.products.FindByID(ctx, line.ProductID)
	if errors.Is(err, repository.ErrProductNotFound) {
		return &InsufficientStockError{ProductID: line.ProductID, Name: line.Name, Requested: line.Quantity}
	}
	if err != nil {
		return err
	}

	left := product.AvailableQuantity - line.Quantity
	if left < 0 {
		return &InsufficientStockError{
			ProductID: line.ProductID,
			Name:      product.Name,
			Requested: line.Quantity,
			Available: product.AvailableQuantity,
		}
	}
	if err := s.products.SetStock(ctx, line.ProductID, left); err != nil {
		return err
	}
	return s.mostSellers.Increment(ctx, line.ProductID, product.Name, line.Quantity)
}

// compensate deja constancia del cobro cuando el stock no alcanzó;
// ni el stock ni los contadores fueron modificados. Si otra confirmación
// ya cerró la orden no se escribe nada.
func (s *CheckoutService) compensate(ctx context.Context, order *models.Order, payment *models.Payment) error {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.orders.FlagStockFailed(ctx, order.ID, payment.ID); err != nil {
			return err
		}
		return s.payments.Insert(ctx, payment)
	})
	if errors.Is(err, repository.ErrOrderNotPending) {
		log.Printf("ℹ️ order %s already settled, skipping stock-failure flag", order.ID)
		return err
	}
	if err != nil {
		log.Printf("❌ flagging order %s for reconciliation: %v", order.ID, err)
		return err
	}
	log.Printf("⚠️ order %s paid but stock was short, flagged for reconciliation", order.ID)
	return nil
}

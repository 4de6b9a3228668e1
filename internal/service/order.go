package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"grocery-mart/internal/models"
	"grocery-mart/internal/repository"
)

const maxOrderIDAttempts = 5

// NewOrderID genera ids con la forma ORD seguido de hasta nueve dígitos
func NewOrderID() string {
	return fmt.Sprintf("ORD%d", rand.Intn(1_000_000_000))
}

type OrderService struct {
	carts    repository.CartStore
	products repository.ProductStore
	orders   repository.OrderStore
	users    repository.UserStore
	tx       repository.TxManager

	NewID func() string
	Now   func() time.Time
}

func NewOrderService(repos repository.Set) *OrderService {
	return &OrderService{
		carts:    repos.Carts,
		products: repos.Products,
		orders:   repos.Orders,
		users:    repos.Users,
		tx:       repos.Tx,
		NewID:    NewOrderID,
		Now:      time.Now,
	}
}

// Checkout crea la orden pendiente del carrito o reutiliza la última
// orden del usuario mientras siga pendiente
func (s *OrderService) Checkout(ctx context.Context, session *models.Session) (*models.Order, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}

	cart, err := s.carts.Get(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if cart.Empty() {
		return nil, ErrEmptyCart
	}

	user, err := s.user(ctx, session)
	if err != nil {
		return nil, err
	}

	if user.LastOrderID != "" {
		order, err := s.reuse(ctx, session.UserID, user.LastOrderID, cart)
		if err != nil {
			return nil, err
		}
		if order != nil {
			return order, nil
		}
	}
	return s.create(ctx, session.UserID, cart)
}

// reuse devuelve nil sin error cuando la orden previa ya no sirve
func (s *OrderService) reuse(ctx context.Context, userID, orderID string, cart *models.Cart) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, repository.ErrOrderNotFound) {
		log.Printf("⚠️ last order %s of user %s no longer exists, minting a new one", orderID, userID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if order.UserID != userID || !order.Pending() {
		return nil, nil
	}

	order.SetProducts(cart.Lines)
	order.UpdatedAt = s.Now()
	err = s.orders.Overwrite(ctx, order)
	if errors.Is(err, repository.ErrOrderNotPending) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) create(ctx context.Context, userID string, cart *models.Cart) (*models.Order, error) {
	now := s.Now()
	order := &models.Order{
		UserID:        userID,
		PaymentStatus: models.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	order.SetProducts(cart.Lines)

	for attempt := 0; attempt < maxOrderIDAttempts; attempt++ {
		order.ID = s.NewID()
		err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
			if err := s.orders.Insert(ctx, order); err != nil {
				return err
			}
			return s.users.SetLastOrderID(ctx, userID, order.ID)
		})
		if errors.Is(err, repository.ErrDuplicateID) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return order, nil
	}
	return nil, fmt.Errorf("minting order id: %w", repository.ErrDuplicateID)
}

func (s *OrderService) user(ctx context.Context, session *models.Session) (*models.User, error) {
	user, err := s.users.FindByID(ctx, session.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		role := session.Role
		if role == "" {
			role = models.RoleUser
		}
		return s.users.EnsureUser(ctx, &models.User{ID: session.UserID, Email: session.Email, Role: role})
	}
	return user, err
}

// Revalidation es el resultado de revisar el carrito contra el stock vivo
type Revalidation struct {
	Order           *models.Order     `json:"order"`
	Removed         []models.CartLine `json:"removed"`
	ReadyForPayment bool              `json:"ready_for_payment"`
}

// RevalidateStock descarta las líneas cuyo producto ya no existe o no tiene stock
func (s *OrderService) RevalidateStock(ctx context.Context, session *models.Session, orderID string) (*Revalidation, error) {
	order, err := s.owned(ctx, session, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Pending() {
		return nil, repository.ErrOrderNotPending
	}

	cart, err := s.carts.Get(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	kept := make([]models.CartLine, 0, len(cart.Lines))
	removed := make([]models.CartLine, 0)
	for _, line := range cart.Lines {
		product, err := s.products.FindByID(ctx, line.ProductID)
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			removed = append(removed, line)
		case err != nil:
			return nil, err
		case product.AvailableQuantity <= 0:
			removed = append(removed, line)
		default:
			kept = append(kept, line)
		}
	}

	if len(removed) > 0 {
		cart.Lines = kept
		if err := s.carts.Save(ctx, cart); err != nil {
			return nil, err
		}
	}

	order.SetProducts(kept)
	order.UpdatedAt = s.Now()
	if err := s.orders.Overwrite(ctx, order); err != nil {
		return nil, err
	}

	return &Revalidation{
		Order:           order,
		Removed:         removed,
		ReadyForPayment: len(removed) == 0 && len(kept) > 0,
	}, nil
}

// Get permite leer la orden a su dueño o a un admin
func (s *OrderService) Get(ctx context.Context, session *models.Session, orderID string) (*models.Order, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != session.UserID && !session.IsAdmin() {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *OrderService) owned(ctx context.Context, session *models.Session, orderID string) (*models.Order, error) {
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
	return order, nil
}

func (s *OrderService) ListMine(ctx context.Context, session *models.Session) ([]*models.Order, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	return s.orders.Find(ctx, models.OrderFilter{UserID: session.UserID})
}

func (s *OrderService) ListAll(ctx context.Context, session *models.Session, filter models.OrderFilter) ([]*models.Order, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	return s.orders.Find(ctx, filter)
}

// AdvanceStatus avanza un paso a la vez y solo en órdenes pagadas
func (s *OrderService) AdvanceStatus(ctx context.Context, session *models.Session, orderID string, status models.OrderStatus) (*models.Order, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	if status.Rank() < 0 {
		return nil, &ValidationError{Field: "status", Message: "unknown order status"}
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != models.PaymentStatusPaid ||
		order.OrderStatus.Terminal() ||
		status.Rank() != order.OrderStatus.Rank()+1 {
		return nil, fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, order.OrderStatus, status)
	}

	err = s.orders.SetOrderStatus(ctx, orderID, order.OrderStatus, status)
	if errors.Is(err, repository.ErrStatusChanged) {
		return nil, fmt.Errorf("%w: %q changed before update", ErrInvalidTransition, order.OrderStatus)
	}
	if err != nil {
		return nil, err
	}
	order.OrderStatus = status
	order.UpdatedAt = s.Now()
	return order, nil
}

// StalePending lista órdenes pendientes sin actividad desde hace olderThan
func (s *OrderService) StalePending(ctx context.Context, olderThan time.Duration) ([]*models.Order, error) {
	return s.orders.Find(ctx, models.OrderFilter{
		PaymentStatus: models.PaymentStatusPending,
		UpdatedBefore: s.Now().Add(-olderThan),
	})
}

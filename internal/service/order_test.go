package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocery-mart/internal/models"
	"grocery-mart/internal/repository"
)

func fixedIDs(ids ...string) func() string {
	i := 0
	return func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}

func TestOrderService_CheckoutReusesPendingOrder(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Paneer", 180, 150, 5)
	f.add(t, f.user, p.ID, 1)
	f.svc.Orders.NewID = fixedIDs("ORD123456789", "ORD000000001")

	first, err := f.svc.Orders.Checkout(f.ctx, f.user)
	require.NoError(t, err)
	assert.Equal(t, "ORD123456789", first.ID)
	assert.Equal(t, models.PaymentStatusPending, first.PaymentStatus)
	assert.Equal(t, 150.0, first.TotalAmount)

	second, err := f.svc.Orders.Checkout(f.ctx, f.user)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))

	mine, err := f.svc.Orders.ListMine(f.ctx, f.user)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	user, err := f.repos.Users.FindByID(f.ctx, f.user.UserID)
	require.NoError(t, err)
	assert.Equal(t, "ORD123456789", user.LastOrderID)
}

func TestOrderService_CheckoutRefreshesProducts(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Paneer", 180, 150, 5)
	f.add(t, f.user, p.ID, 1)

	first, err := f.svc.Orders.Checkout(f.ctx, f.user)
	require.NoError(t, err)

	f.add(t, f.user, p.ID, 1)
	second, err := f.svc.Orders.Checkout(f.ctx, f.user)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 300.0, second.TotalAmount)
	assert.Equal(t, 2, second.TotalItems)
}

func TestOrderService_CheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Orders.Checkout(f.ctx, f.user)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestOrderService_StaleLastOrderMintsNewID(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Paneer", 180, 150, 5)
	f.add(t, f.user, p.ID, 1)
	require.NoError(t, f.repos.Users.SetLastOrderID(f.ctx, f.user.UserID, "ORD404"))
	f.svc.Orders.NewID = fixedIDs("ORD555")

	order, err := f.svc.Orders.Checkout(f.ctx, f.user)
	require.NoError(t, err)
	assert.Equal(t, "ORD555", order.ID)
}

func TestOrderService_RetriesOnIDCollision(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Paneer", 180, 150, 5)
	require.NoError(t, f.repos.Orders.Insert(f.ctx, &models.Order{ID: "ORD1", UserID: "someone", PaymentStatus: models.PaymentStatusPaid}))
	f.add(t, f.user, p.ID, 1)
	f.svc.Orders.NewID = fixedIDs("ORD1", "ORD2")

	order, err := f.svc.Orders.Checkout(f.ctx, f.user)
	require.NoError(t, err)
	assert.Equal(t, "ORD2", order.ID)
}

func TestOrderService_RevalidateDropsUnavailable(t *testing.T) {
	f := newFixture(t)
	keep := f.product(t, "Atta", 300, 280, 5)
	gone := f.product(t, "Honey", 250, 0, 5)
	empty := f.product(t, "Saffron", 500, 450, 5)
	f.add(t, f.user, keep.ID, 1)
	f.add(t, f.user, gone.ID, 1)
	f.add(t, f.user, empty.ID, 1)

	order, err := f.svc.Orders.Checkout(f.ctx, f.user)
	require.NoError(t, err)

	require.NoError(t, f.repos.Products.SoftDelete(f.ctx, gone.ID))
	require.NoError(t, f.repos.Products.SetStock(f.ctx, empty.ID, 0))

	res, err := f.svc.Orders.RevalidateStock(f.ctx, f.user, order.ID)
	require.NoError(t, err)
	assert.False(t, res.ReadyForPayment)
	assert.Len(t, res.Removed, 2)
	require.Len(t, res.Order.Products, 1)
	assert.Equal(t, keep.ID, res.Order.Products[0].ProductID)
	assert.Equal(t, 280.0, res.Order.TotalAmount)

	res, err = f.svc.Orders.RevalidateStock(f.ctx, f.user, order.ID)
	require.NoError(t, err)
	assert.True(t, res.ReadyForPayment)

	_, err = f.svc.Orders.RevalidateStock(f.ctx, f.admin, order.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestOrderService_AdvanceStatus(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.repos.Orders.Insert(f.ctx, &models.Order{
		ID: "ORD9", UserID: f.user.UserID,
		PaymentStatus: models.PaymentStatusPaid, OrderStatus: models.OrderStatusProcessing,
	}))
	require.NoError(t, f.repos.Orders.Insert(f.ctx, &models.Order{
		ID: "ORD10", UserID: f.user.UserID, PaymentStatus: models.PaymentStatusPending,
	}))

	_, err := f.svc.Orders.AdvanceStatus(f.ctx, f.user, "ORD9", models.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Orders.AdvanceStatus(f.ctx, f.admin, "ORD9", models.OrderStatusOutForDelivery)
	assert.ErrorIs(t, err, ErrInvalidTransition, "steps cannot be skipped")

	for _, next := range []models.OrderStatus{
		models.OrderStatusShipped,
		models.OrderStatusOutForDelivery,
		models.OrderStatusDelivered,
	} {
		o, err := f.svc.Orders.AdvanceStatus(f.ctx, f.admin, "ORD9", next)
		require.NoError(t, err)
		assert.Equal(t, next, o.OrderStatus)
	}

	_, err = f.svc.Orders.AdvanceStatus(f.ctx, f.admin, "ORD9", models.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.svc.Orders.AdvanceStatus(f.ctx, f.admin, "ORD9", models.OrderStatusDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.Orders.AdvanceStatus(f.ctx, f.admin, "ORD10", models.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.Orders.AdvanceStatus(f.ctx, f.admin, "missing", models.OrderStatusShipped)
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
}

// staleOrders devuelve siempre la copia leída antes de que otra petición escribiera
type staleOrders struct {
	repository.OrderStore
	snapshot *models.Order
}

func (s *staleOrders) FindByID(ctx context.Context, id string) (*models.Order, error) {
	if id == s.snapshot.ID {
		return s.snapshot.Clone(), nil
	}
	return s.OrderStore.FindByID(ctx, id)
}

func TestOrderService_AdvanceStatusConcurrentAdmins(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.repos.Orders.Insert(f.ctx, &models.Order{
		ID: "ORD11", UserID: f.user.UserID,
		PaymentStatus: models.PaymentStatusPaid, OrderStatus: models.OrderStatusOutForDelivery,
	}))
	before, err := f.repos.Orders.FindByID(f.ctx, "ORD11")
	require.NoError(t, err)

	_, err = f.svc.Orders.AdvanceStatus(f.ctx, f.admin, "ORD11", models.OrderStatusDelivered)
	require.NoError(t, err)

	repos := f.repos
	repos.Orders = &staleOrders{OrderStore: f.repos.Orders, snapshot: before}
	late := NewOrderService(repos)

	_, err = late.AdvanceStatus(f.ctx, f.admin, "ORD11", models.OrderStatusDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := f.repos.Orders.FindByID(f.ctx, "ORD11")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, stored.OrderStatus)
}

func TestOrderService_GetOwnership(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.repos.Orders.Insert(f.ctx, &models.Order{ID: "ORD7", UserID: f.user.UserID}))
	stranger := &models.Session{UserID: "u2", Role: models.RoleUser}

	_, err := f.svc.Orders.Get(f.ctx, stranger, "ORD7")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Orders.Get(f.ctx, f.admin, "ORD7")
	assert.NoError(t, err)
}

func TestOrderService_StalePending(t *testing.T) {
	f := newFixture(t)
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, f.repos.Orders.Insert(f.ctx, &models.Order{
		ID: "ORD-OLD", UserID: f.user.UserID, PaymentStatus: models.PaymentStatusPending, UpdatedAt: old,
	}))
	require.NoError(t, f.repos.Orders.Insert(f.ctx, &models.Order{
		ID: "ORD-NEW", UserID: f.user.UserID, PaymentStatus: models.PaymentStatusPending, UpdatedAt: time.Now(),
	}))

	stale, err := f.svc.Orders.StalePending(f.ctx, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "ORD-OLD", stale[0].ID)
}

package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"grocery-mart/internal/models"
	"grocery-mart/internal/repository"
)

type CheckoutSuite struct {
	suite.Suite
	f *fixture
}

func TestCheckoutSuite(t *testing.T) {
	suite.Run(t, new(CheckoutSuite))
}

func (s *CheckoutSuite) SetupTest() {
	s.f = newFixture(s.T())
}

func (s *CheckoutSuite) checkout(session *models.Session) *models.Order {
	order, err := s.f.svc.Orders.Checkout(s.f.ctx, session)
	s.Require().NoError(err)
	return order
}

func (s *CheckoutSuite) TestConfirmPaymentCommitsEverything() {
	f := s.f
	a := f.product(s.T(), "Tea", 120, 100, 5)
	b := f.product(s.T(), "Sugar", 50, 0, 3)
	f.add(s.T(), f.user, a.ID, 2)
	f.add(s.T(), f.user, b.ID, 1)
	addr := f.address(s.T(), f.user, "Home")
	order := s.checkout(f.user)

	amount := 250.0
	receipt, err := f.svc.Checkout.ConfirmPayment(f.ctx, f.user, order.ID, PaymentRequest{
		Method: "upi", GatewayRef: "pay_123", Amount: &amount,
	})
	s.Require().NoError(err)

	s.Equal(models.PaymentStatusPaid, receipt.Order.PaymentStatus)
	s.Equal(models.OrderStatusProcessing, receipt.Order.OrderStatus)
	s.Equal(addr.ID, receipt.Order.SelectedAddressID)
	s.Equal(receipt.Payment.ID, receipt.Order.PaymentID)
	s.NotNil(receipt.Order.PaidAt)

	s.Equal(3, f.stock(s.T(), a.ID))
	s.Equal(2, f.stock(s.T(), b.ID))

	stored, err := f.repos.Orders.FindByID(f.ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(models.PaymentStatusPaid, stored.PaymentStatus)

	payments, err := f.repos.Payments.FindByOrder(f.ctx, order.ID)
	s.Require().NoError(err)
	s.Len(payments, 1)
	s.Equal(250.0, payments[0].Amount)

	cart, err := f.svc.Cart.Get(f.ctx, f.user)
	s.Require().NoError(err)
	s.True(cart.Empty())

	top, err := f.svc.MostSellers.Top(f.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Equal(a.ID, top[0].ProductID)
	s.Equal(2, top[0].QuantitySold)

	_, err = f.svc.Checkout.ConfirmPayment(f.ctx, f.user, order.ID, PaymentRequest{})
	s.ErrorIs(err, repository.ErrOrderNotPending)
}

func (s *CheckoutSuite) TestInsufficientStockAbortsWholeTransaction() {
	f := s.f
	plenty := f.product(s.T(), "Salt", 20, 0, 10)
	scarce := f.product(s.T(), "Mango", 90, 80, 2)
	f.add(s.T(), f.user, plenty.ID, 3)
	f.add(s.T(), f.user, scarce.ID, 2)
	f.address(s.T(), f.user, "Home")
	order := s.checkout(f.user)

	s.Require().NoError(f.repos.Products.SetStock(f.ctx, scarce.ID, 1))

	_, err := f.svc.Checkout.ConfirmPayment(f.ctx, f.user, order.ID, PaymentRequest{})
	s.ErrorIs(err, ErrInsufficientStock)
	var short *InsufficientStockError
	s.Require().ErrorAs(err, &short)
	s.Equal(scarce.ID, short.ProductID)
	s.Equal(1, short.Available)

	s.Equal(10, f.stock(s.T(), plenty.ID), "earlier lines must be rolled back")
	s.Equal(1, f.stock(s.T(), scarce.ID))

	top, err := f.repos.MostSellers.Top(f.ctx, 0)
	s.Require().NoError(err)
	s.Empty(top)

	stored, err := f.repos.Orders.FindByID(f.ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(models.PaymentStatusStockFailed, stored.PaymentStatus)
	s.Empty(stored.OrderStatus)

	payments, err := f.repos.Payments.FindByOrder(f.ctx, order.ID)
	s.Require().NoError(err)
	s.Len(payments, 1, "the captured payment is still recorded")

	cart, err := f.svc.Cart.Get(f.ctx, f.user)
	s.Require().NoError(err)
	s.Len(cart.Lines, 2)
}

func (s *CheckoutSuite) TestDoubleSubmitKeepsPaidOrder() {
	f := s.f
	p := f.product(s.T(), "Milk", 60, 55, 2)
	f.add(s.T(), f.user, p.ID, 2)
	f.address(s.T(), f.user, "Home")
	order := s.checkout(f.user)

	// la segunda confirmación leyó la orden antes de que la primera escribiera
	repos := f.repos
	repos.Orders = &staleOrders{OrderStore: f.repos.Orders, snapshot: order.Clone()}
	second := NewCheckoutService(repos, f.svc.Addresses)

	_, err := f.svc.Checkout.ConfirmPayment(f.ctx, f.user, order.ID, PaymentRequest{})
	s.Require().NoError(err)

	_, err = second.ConfirmPayment(f.ctx, f.user, order.ID, PaymentRequest{})
	s.ErrorIs(err, repository.ErrOrderNotPending)
	s.NotErrorIs(err, ErrInsufficientStock)

	stored, err := f.repos.Orders.FindByID(f.ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(models.PaymentStatusPaid, stored.PaymentStatus)
	s.Equal(models.OrderStatusProcessing, stored.OrderStatus)

	payments, err := f.repos.Payments.FindByOrder(f.ctx, order.ID)
	s.Require().NoError(err)
	s.Len(payments, 1)
	s.Equal(0, f.stock(s.T(), p.ID))
}

func (s *CheckoutSuite) TestRequiresAddress() {
	f := s.f
	p := f.product(s.T(), "Tea", 120, 100, 5)
	f.add(s.T(), f.user, p.ID, 1)
	order := s.checkout(f.user)

	_, err := f.svc.Checkout.ConfirmPayment(f.ctx, f.user, order.ID, PaymentRequest{})
	s.ErrorIs(err, ErrAddressRequired)
	s.Equal(5, f.stock(s.T(), p.ID))
}

func (s *CheckoutSuite) TestAmountMismatch() {
	f := s.f
	p := f.product(s.T(), "Tea", 120, 100, 5)
	f.add(s.T(), f.user, p.ID, 1)
	f.address(s.T(), f.user, "Home")
	order := s.checkout(f.user)

	wrong := 99.0
	_, err := f.svc.Checkout.ConfirmPayment(f.ctx, f.user, order.ID, PaymentRequest{Amount: &wrong})
	s.ErrorIs(err, ErrAmountMismatch)
}

func (s *CheckoutSuite) TestOtherUsersOrder() {
	f := s.f
	p := f.product(s.T(), "Tea", 120, 100, 5)
	f.add(s.T(), f.user, p.ID, 1)
	order := s.checkout(f.user)

	_, err := f.svc.Checkout.ConfirmPayment(f.ctx, f.admin, order.ID, PaymentRequest{})
	s.ErrorIs(err, ErrForbidden)
}

func (s *CheckoutSuite) TestPaidHookInvalidatesRanking() {
	f := s.f
	p := f.product(s.T(), "Tea", 120, 100, 5)

	top, err := f.svc.MostSellers.Top(f.ctx, 0)
	s.Require().NoError(err)
	s.Empty(top)

	f.add(s.T(), f.user, p.ID, 1)
	f.address(s.T(), f.user, "Home")
	order := s.checkout(f.user)
	_, err = f.svc.Checkout.ConfirmPayment(f.ctx, f.user, order.ID, PaymentRequest{})
	s.Require().NoError(err)

	top, err = f.svc.MostSellers.Top(f.ctx, 0)
	s.Require().NoError(err)
	s.Len(top, 1)
}

func (s *CheckoutSuite) TestMostSellerCountsNeverDecrease() {
	f := s.f
	p := f.product(s.T(), "Bread", 40, 35, 100)
	f.address(s.T(), f.user, "Home")

	last := 0
	for qty := 1; qty <= 3; qty++ {
		f.add(s.T(), f.user, p.ID, qty)
		order := s.checkout(f.user)
		_, err := f.svc.Checkout.ConfirmPayment(f.ctx, f.user, order.ID, PaymentRequest{})
		s.Require().NoError(err)

		top, err := f.repos.MostSellers.Top(f.ctx, 1)
		s.Require().NoError(err)
		s.GreaterOrEqual(top[0].QuantitySold, last)
		last = top[0].QuantitySold
	}
	s.Equal(6, last)
}

func (s *CheckoutSuite) TestConcurrentDepletion() {
	f := s.f
	p := f.product(s.T(), "Last Pineapple", 90, 0, 1)

	buyers := []*models.Session{
		{UserID: "b1", Email: "b1@mart.test", Role: models.RoleUser},
		{UserID: "b2", Email: "b2@mart.test", Role: models.RoleUser},
	}
	orders := make([]*models.Order, len(buyers))
	for i, b := range buyers {
		f.add(s.T(), b, p.ID, 1)
		f.address(s.T(), b, "Home")
		orders[i] = s.checkout(b)
	}

	errs := make([]error, len(buyers))
	var wg sync.WaitGroup
	for i := range buyers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Checkout.ConfirmPayment(context.Background(), buyers[i], orders[i].ID, PaymentRequest{})
		}(i)
	}
	wg.Wait()

	succeeded, short := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case s.ErrorIs(err, ErrInsufficientStock):
			short++
		}
	}
	s.Equal(1, succeeded)
	s.Equal(1, short)
	s.Equal(0, f.stock(s.T(), p.ID))
}

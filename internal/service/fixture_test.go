package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-mart/internal/cache"
	"grocery-mart/internal/models"
	"grocery-mart/internal/repository"
	"grocery-mart/internal/repository/memory"
)

type fixture struct {
	ctx   context.Context
	repos repository.Set
	cache *cache.Cache
	svc   *Services
	user  *models.Session
	admin *models.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	c := cache.New(time.Minute)
	t.Cleanup(c.Close)

	repos := memory.New().Set()
	f := &fixture{
		ctx:   context.Background(),
		repos: repos,
		cache: c,
		svc: New(repos, c, Options{
			UndoWindow:     10 * time.Second,
			MostSellerTopN: 3,
			AdminEmails:    []string{"boss@mart.test"},
		}),
		user:  &models.Session{UserID: "u1", Email: "u1@mart.test", Role: models.RoleUser},
		admin: &models.Session{UserID: "a1", Email: "boss@mart.test", Role: models.RoleAdmin},
	}

	for _, s := range []*models.Session{f.user, f.admin} {
		_, err := repos.Users.EnsureUser(f.ctx, &models.User{ID: s.UserID, Email: s.Email, Role: s.Role})
		require.NoError(t, err)
	}
	return f
}

func (f *fixture) product(t *testing.T, name string, price, discounted float64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:              name,
		Category:          "grocery",
		Price:             price,
		DiscountedPrice:   discounted,
		AvailableQuantity: stock,
	}
	require.NoError(t, f.repos.Products.Create(f.ctx, p))
	return p
}

func (f *fixture) stock(t *testing.T, id primitive.ObjectID) int {
	t.Helper()
	p, err := f.repos.Products.FindByID(f.ctx, id)
	require.NoError(t, err)
	return p.AvailableQuantity
}

func (f *fixture) add(t *testing.T, s *models.Session, id primitive.ObjectID, times int) {
	t.Helper()
	for i := 0; i < times; i++ {
		_, err := f.svc.Cart.AddToCart(f.ctx, s, id)
		require.NoError(t, err)
	}
}

func (f *fixture) address(t *testing.T, s *models.Session, name string) *models.Address {
	t.Helper()
	a, err := f.svc.Addresses.Save(f.ctx, s, &models.Address{
		Name:        name,
		Phone:       "9999999999",
		Line1:       "12 Market Road",
		City:        "Pune",
		State:       "MH",
		Pincode:     "411001",
		AddressType: models.AddressTypeHome,
	})
	require.NoError(t, err)
	return a
}

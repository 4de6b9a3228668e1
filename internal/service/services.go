// Package service contiene los flujos de carrito, checkout, órdenes,
// stock, direcciones y más vendidos. Cada operación recibe la sesión
// explícita del usuario.
package service

import (
	"context"
	"time"

	"grocery-mart/internal/cache"
	"grocery-mart/internal/catalog"
	"grocery-mart/internal/models"
	"grocery-mart/internal/repository"
)

type Options struct {
	UndoWindow     time.Duration
	MostSellerTopN int
	AdminEmails    []string
	Manifest       *catalog.Manifest
}

type Services struct {
	Cart        *CartService
	Orders      *OrderService
	Checkout    *CheckoutService
	MostSellers *MostSellerService
	Addresses   *AddressService
	Catalog     *CatalogService
	Users       *UserService
}

func New(repos repository.Set, c *cache.Cache, opts Options) *Services {
	mostSellers := NewMostSellerService(repos, c, opts.MostSellerTopN)
	addresses := NewAddressService(repos)
	catalogSvc := NewCatalogService(repos, mostSellers, opts.Manifest, c)

	checkout := NewCheckoutService(repos, addresses)
	checkout.OnPaid(func(_ context.Context, _ *models.Order) {
		mostSellers.Invalidate()
		catalogSvc.Invalidate()
	})

	return &Services{
		Cart:        NewCartService(repos, c, opts.UndoWindow),
		Orders:      NewOrderService(repos),
		Checkout:    checkout,
		MostSellers: mostSellers,
		Addresses:   addresses,
		Catalog:     catalogSvc,
		Users:       NewUserService(repos, opts.AdminEmails),
	}
}

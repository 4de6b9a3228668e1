package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-mart/internal/cache"
	"grocery-mart/internal/models"
	"grocery-mart/internal/repository"
)

// CartView es el carrito con sus totales derivados
type CartView struct {
	*models.Cart
	models.CartTotals
}

func NewCartView(c *models.Cart) *CartView {
	return &CartView{Cart: c, CartTotals: c.Totals()}
}

type CartService struct {
	products   repository.ProductStore
	carts      repository.CartStore
	watcher    repository.CartWatcher
	cache      *cache.Cache
	undoWindow time.Duration
}

func NewCartService(repos repository.Set, c *cache.Cache, undoWindow time.Duration) *CartService {
	return &CartService{
		products:   repos.Products,
		carts:      repos.Carts,
		watcher:    repos.CartWatcher,
		cache:      c,
		undoWindow: undoWindow,
	}
}

func (s *CartService) Get(ctx context.Context, session *models.Session) (*models.Cart, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	return s.carts.Get(ctx, session.UserID)
}

// AddToCart suma una unidad sin superar el stock disponible
func (s *CartService) AddToCart(ctx context.Context, session *models.Session, productID primitive.ObjectID) (*models.Cart, error) {
	return s.bump(ctx, session, productID, true)
}

// Increment es como AddToCart pero exige que la línea exista
func (s *CartService) Increment(ctx context.Context, session *models.Session, productID primitive.ObjectID) (*models.Cart, error) {
	return s.bump(ctx, session, productID, false)
}

func (s *CartService) bump(ctx context.Context, session *models.Session, productID primitive.ObjectID, insert bool) (*models.Cart, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	cart, err := s.carts.Get(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	i := cart.Index(productID)
	switch {
	case i >= 0 && cart.Lines[i].Quantity < product.AvailableQuantity:
		cart.Lines[i].Quantity++
	case i < 0 && !insert:
		return nil, ErrNotInCart
	case i < 0 && product.AvailableQuantity > 0:
		cart.Lines = append(cart.Lines, models.NewCartLine(product, 1))
	default:
		return nil, &OutOfStockError{ProductID: productID, Name: product.Name, Available: product.AvailableQuantity}
	}

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Decrement quita una unidad; con cantidad 1 elimina la línea
func (s *CartService) Decrement(ctx context.Context, session *models.Session, productID primitive.ObjectID) (*models.Cart, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}

	cart, err := s.carts.Get(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	i := cart.Index(productID)
	if i < 0 {
		return nil, ErrNotInCart
	}
	if cart.Lines[i].Quantity <= 1 {
		cart.Remove(productID)
	} else {
		cart.Lines[i].Quantity--
	}

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Remove elimina la línea y devuelve un token para deshacer dentro de la ventana
func (s *CartService) Remove(ctx context.Context, session *models.Session, productID primitive.ObjectID) (*models.Cart, string, error) {
	if err := requireSession(session); err != nil {
		return nil, "", err
	}

	cart, err := s.carts.Get(ctx, session.UserID)
	if err != nil {
		return nil, "", err
	}
	snapshot := cart.Clone()
	if !cart.Remove(productID) {
		return nil, "", ErrNotInCart
	}
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, "", err
	}

	token := uuid.NewString()
	if err := s.cache.Marshal(undoKey(session.UserID, token), snapshot, s.undoWindow); err != nil {
		return nil, "", fmt.Errorf("storing undo snapshot: %w", err)
	}
	return cart, token, nil
}

// Undo restaura el carrito completo previo a Remove; cada token sirve una sola vez
func (s *CartService) Undo(ctx context.Context, session *models.Session, token string) (*models.Cart, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}

	var snapshot models.Cart
	found, err := s.cache.TakeUnmarshal(undoKey(session.UserID, token), &snapshot)
	if err != nil {
		return nil, fmt.Errorf("reading undo snapshot: %w", err)
	}
	if !found {
		return nil, ErrUndoExpired
	}
	if snapshot.Lines == nil {
		snapshot.Lines = []models.CartLine{}
	}

	if err := s.carts.Save(ctx, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (s *CartService) Watch(ctx context.Context, session *models.Session) (<-chan *models.Cart, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	return s.watcher.Watch(ctx, session.UserID)
}

func undoKey(userID, token string) string {
	return fmt.Sprintf("cart:undo:%s:%s", userID, token)
}

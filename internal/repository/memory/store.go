// Package memory implementa todos los repositorios en memoria.
// Las transacciones se serializan con un mutex y se revierten ante error.
package memory

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-mart/internal/models"
	"grocery-mart/internal/repository"
)

type txKey struct{}

type state struct {
	products    map[primitive.ObjectID]*models.Product
	carts       map[string]*models.Cart
	orders      map[string]*models.Order
	payments    map[string]*models.Payment
	users       map[string]*models.User
	addresses   map[primitive.ObjectID]*models.Address
	mostSellers map[primitive.ObjectID]*models.MostSellerCounter
}

type Store struct {
	mu      sync.Mutex
	st      state
	pending []*models.Cart

	watchMu  sync.Mutex
	watchers map[string][]chan *models.Cart
}

func New() *Store {
	return &Store{
		st: state{
			products:    make(map[primitive.ObjectID]*models.Product),
			carts:       make(map[string]*models.Cart),
			orders:      make(map[string]*models.Order),
			payments:    make(map[string]*models.Payment),
			users:       make(map[string]*models.User),
			addresses:   make(map[primitive.ObjectID]*models.Address),
			mostSellers: make(map[primitive.ObjectID]*models.MostSellerCounter),
		},
		watchers: make(map[string][]chan *models.Cart),
	}
}

// Set expone el store con las interfaces de repository
func (s *Store) Set() repository.Set {
	return repository.Set{
		Products:    &products{s},
		Carts:       &carts{s},
		CartWatcher: &carts{s},
		Orders:      &orders{s},
		Payments:    &payments{s},
		Users:       &users{s},
		Addresses:   &addresses{s},
		MostSellers: &mostSellers{s},
		Tx:          s,
	}
}

// lock toma el mutex salvo que ctx ya pertenezca a una transacción de este store
func (s *Store) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) == s {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) == s {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	s.pending = nil
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.st = snapshot
		s.pending = nil
		return err
	}
	for _, cart := range s.pending {
		s.publish(cart)
	}
	s.pending = nil
	return nil
}

// notify publica al instante o, dentro de una transacción, al confirmar
func (s *Store) notify(ctx context.Context, cart *models.Cart) {
	if ctx.Value(txKey{}) == s {
		s.pending = append(s.pending, cart.Clone())
		return
	}
	s.publish(cart)
}

func (st state) clone() state {
	out := state{
		products:    make(map[primitive.ObjectID]*models.Product, len(st.products)),
		carts:       make(map[string]*models.Cart, len(st.carts)),
		orders:      make(map[string]*models.Order, len(st.orders)),
		payments:    make(map[string]*models.Payment, len(st.payments)),
		users:       make(map[string]*models.User, len(st.users)),
		addresses:   make(map[primitive.ObjectID]*models.Address, len(st.addresses)),
		mostSellers: make(map[primitive.ObjectID]*models.MostSellerCounter, len(st.mostSellers)),
	}
	for k, v := range st.products {
		out.products[k] = cloneProduct(v)
	}
	for k, v := range st.carts {
		out.carts[k] = v.Clone()
	}
	for k, v := range st.orders {
		out.orders[k] = v.Clone()
	}
	for k, v := range st.payments {
		p := *v
		out.payments[k] = &p
	}
	for k, v := range st.users {
		u := *v
		out.users[k] = &u
	}
	for k, v := range st.addresses {
		a := *v
		out.addresses[k] = &a
	}
	for k, v := range st.mostSellers {
		c := *v
		out.mostSellers[k] = &c
	}
	return out
}

func cloneProduct(p *models.Product) *models.Product {
	out := *p
	if p.Images != nil {
		out.Images = append([]string(nil), p.Images...)
	}
	return &out
}

// publish entrega el carrito a los observadores sin bloquear;
// un observador lento solo ve el estado más reciente
func (s *Store) publish(cart *models.Cart) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	for _, ch := range s.watchers[cart.UserID] {
		offer(ch, cart.Clone())
	}
}

func offer(ch chan *models.Cart, cart *models.Cart) {
	select {
	case ch <- cart:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- cart:
	default:
	}
}

func (s *Store) subscribe(userID string) chan *models.Cart {
	ch := make(chan *models.Cart, 1)
	s.watchMu.Lock()
	s.watchers[userID] = append(s.watchers[userID], ch)
	s.watchMu.Unlock()
	return ch
}

func (s *Store) unsubscribe(userID string, ch chan *models.Cart) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	list := s.watchers[userID]
	for i, c := range list {
		if c == ch {
			s.watchers[userID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(s.watchers[userID]) == 0 {
		delete(s.watchers, userID)
	}
}

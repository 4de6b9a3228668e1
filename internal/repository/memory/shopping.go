package memory

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-mart/internal/models"
	"grocery-mart/internal/repository"
)

type carts struct{ s *Store }

func (r *carts) Get(ctx context.Context, userID string) (*models.Cart, error) {
	defer r.s.lock(ctx)()
	return r.get(userID), nil
}

func (r *carts) get(userID string) *models.Cart {
	if c, ok := r.s.st.carts[userID]; ok {
		return c.Clone()
	}
	return models.NewCart(userID)
}

func (r *carts) Save(ctx context.Context, cart *models.Cart) error {
	defer r.s.lock(ctx)()

	cart.UpdatedAt = time.Now()
	if cart.Lines == nil {
		cart.Lines = []models.CartLine{}
	}
	r.s.st.carts[cart.UserID] = cart.Clone()
	r.s.notify(ctx, cart)
	return nil
}

func (r *carts) Clear(ctx context.Context, userID string) error {
	defer r.s.lock(ctx)()

	cart := models.NewCart(userID)
	cart.UpdatedAt = time.Now()
	r.s.st.carts[userID] = cart.Clone()
	r.s.notify(ctx, cart)
	return nil
}

// Watch entrega primero el estado actual y luego cada escritura
func (r *carts) Watch(ctx context.Context, userID string) (<-chan *models.Cart, error) {
	ch := r.s.subscribe(userID)

	unlock := r.s.lock(ctx)
	current := r.get(userID)
	r.s.watchMu.Lock()
	offer(ch, current)
	r.s.watchMu.Unlock()
	unlock()

	go func() {
		<-ctx.Done()
		r.s.unsubscribe(userID, ch)
		close(ch)
	}()
	return ch, nil
}

type orders struct{ s *Store }

func (r *orders) FindByID(ctx context.Context, id string) (*models.Order, error) {
	defer r.s.lock(ctx)()

	o, ok := r.s.st.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return o.Clone(), nil
}

func (r *orders) Insert(ctx context.Context, order *models.Order) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.st.orders[order.ID]; ok {
		return repository.ErrDuplicateID
	}
	r.s.st.orders[order.ID] = order.Clone()
	return nil
}

func (r *orders) Overwrite(ctx context.Context, order *models.Order) error {
	defer r.s.lock(ctx)()

	o, ok := r.s.st.orders[order.ID]
	if !ok || !o.Pending() {
		return repository.ErrOrderNotPending
	}
	o.Products = models.CloneLines(order.Products)
	o.TotalAmount = order.TotalAmount
	o.TotalSaved = order.TotalSaved
	o.TotalItems = order.TotalItems
	o.UpdatedAt = order.UpdatedAt
	return nil
}

func (r *orders) MarkPaid(ctx context.Context, order *models.Order) error {
	defer r.s.lock(ctx)()

	o, ok := r.s.st.orders[order.ID]
	if !ok || !o.Pending() {
		return repository.ErrOrderNotPending
	}
	o.PaymentStatus = order.PaymentStatus
	o.OrderStatus = order.OrderStatus
	o.SelectedAddressID = order.SelectedAddressID
	o.PaymentID = order.PaymentID
	if order.PaidAt != nil {
		t := *order.PaidAt
		o.PaidAt = &t
	}
	o.UpdatedAt = order.UpdatedAt
	return nil
}

func (r *orders) FlagStockFailed(ctx context.Context, id, paymentID string) error {
	defer r.s.lock(ctx)()

	o, ok := r.s.st.orders[id]
	if !ok || !o.Pending() {
		return repository.ErrOrderNotPending
	}
	o.PaymentStatus = models.PaymentStatusStockFailed
	o.PaymentID = paymentID
	o.UpdatedAt = time.Now()
	return nil
}

func (r *orders) SetOrderStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	defer r.s.lock(ctx)()

	o, ok := r.s.st.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if o.PaymentStatus != models.PaymentStatusPaid || o.OrderStatus != from {
		return repository.ErrStatusChanged
	}
	o.OrderStatus = to
	o.UpdatedAt = time.Now()
	return nil
}

func (r *orders) Find(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	defer r.s.lock(ctx)()

	out := make([]*models.Order, 0)
	for _, o := range r.s.st.orders {
		if filter.Matches(o) {
			out = append(out, o.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type payments struct{ s *Store }

func (r *payments) Insert(ctx context.Context, payment *models.Payment) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.st.payments[payment.ID]; ok {
		return repository.ErrDuplicateID
	}
	p := *payment
	r.s.st.payments[p.ID] = &p
	return nil
}

func (r *payments) FindByOrder(ctx context.Context, orderID string) ([]*models.Payment, error) {
	defer r.s.lock(ctx)()

	out := make([]*models.Payment, 0)
	for _, p := range r.s.st.payments {
		if p.OrderID == orderID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

type users struct{ s *Store }

func (r *users) FindByID(ctx context.Context, id string) (*models.User, error) {
	defer r.s.lock(ctx)()

	u, ok := r.s.st.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *users) EnsureUser(ctx context.Context, user *models.User) (*models.User, error) {
	defer r.s.lock(ctx)()

	u, ok := r.s.st.users[user.ID]
	if !ok {
		u = &models.User{ID: user.ID, Role: user.Role, CreatedAt: time.Now()}
		r.s.st.users[user.ID] = u
	}
	u.Email = user.Email
	u.Name = user.Name
	cp := *u
	return &cp, nil
}

func (r *users) SetLastOrderID(ctx context.Context, id, orderID string) error {
	defer r.s.lock(ctx)()

	u, ok := r.s.st.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.LastOrderID = orderID
	return nil
}

func (r *users) SetRole(ctx context.Context, id, role string) error {
	defer r.s.lock(ctx)()

	u, ok := r.s.st.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (r *users) FindAll(ctx context.Context) ([]*models.User, error) {
	defer r.s.lock(ctx)()

	out := make([]*models.User, 0, len(r.s.st.users))
	for _, u := range r.s.st.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

type addresses struct{ s *Store }

func (r *addresses) FindByUser(ctx context.Context, userID string) ([]*models.Address, error) {
	defer r.s.lock(ctx)()

	out := make([]*models.Address, 0)
	for _, a := range r.s.st.addresses {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DefaultAddress != out[j].DefaultAddress {
			return out[i].DefaultAddress
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *addresses) FindByID(ctx context.Context, userID string, id primitive.ObjectID) (*models.Address, error) {
	defer r.s.lock(ctx)()

	a, ok := r.s.st.addresses[id]
	if !ok || a.UserID != userID {
		return nil, repository.ErrAddressNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *addresses) SaveAsDefault(ctx context.Context, address *models.Address) error {
	defer r.s.lock(ctx)()

	address.DefaultAddress = true
	r.flip(address.UserID, address.ID)
	cp := *address
	r.s.st.addresses[cp.ID] = &cp
	return nil
}

func (r *addresses) SetDefault(ctx context.Context, userID string, id primitive.ObjectID) error {
	defer r.s.lock(ctx)()

	a, ok := r.s.st.addresses[id]
	if !ok || a.UserID != userID {
		return repository.ErrAddressNotFound
	}
	r.flip(userID, id)
	a.DefaultAddress = true
	a.UpdatedAt = time.Now()
	return nil
}

func (r *addresses) flip(userID string, keep primitive.ObjectID) {
	for id, a := range r.s.st.addresses {
		if a.UserID == userID && id != keep {
			a.DefaultAddress = false
		}
	}
}

func (r *addresses) Delete(ctx context.Context, userID string, id primitive.ObjectID) error {
	defer r.s.lock(ctx)()

	a, ok := r.s.st.addresses[id]
	if !ok || a.UserID != userID {
		return repository.ErrAddressNotFound
	}
	delete(r.s.st.addresses, id)
	return nil
}

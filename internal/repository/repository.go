package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-mart/internal/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrAddressNotFound = errors.New("address not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrDuplicateID     = errors.New("duplicate id")
	ErrOrderNotPending = errors.New("order is no longer pending")
	ErrStatusChanged   = errors.New("order status changed concurrently")
)

type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindAll(ctx context.Context, q models.ProductQuery) ([]*models.Product, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, update *models.ProductUpdate) error
	SetStock(ctx context.Context, id primitive.ObjectID, stock int) error
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
}

// CartStore guarda el carrito completo en una sola escritura
type CartStore interface {
	// Get devuelve un carrito vacío si el usuario aún no tiene uno
	Get(ctx context.Context, userID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Clear(ctx context.Context, userID string) error
}

// CartWatcher entrega el estado del carrito cada vez que cambia.
// El canal se cierra al cancelar ctx.
type CartWatcher interface {
	Watch(ctx context.Context, userID string) (<-chan *models.Cart, error)
}

type OrderStore interface {
	FindByID(ctx context.Context, id string) (*models.Order, error)
	// Insert falla con ErrDuplicateID si el id ya existe
	Insert(ctx context.Context, order *models.Order) error
	// Overwrite reemplaza productos y totales conservando created_at
	Overwrite(ctx context.Context, order *models.Order) error
	// MarkPaid falla con ErrOrderNotPending si la orden ya no está pendiente
	MarkPaid(ctx context.Context, order *models.Order) error
	// FlagStockFailed también exige que la orden siga pendiente
	FlagStockFailed(ctx context.Context, id, paymentID string) error
	// SetOrderStatus falla con ErrStatusChanged si la orden no está pagada
	// o su estado actual ya no es from
	SetOrderStatus(ctx context.Context, id string, from, to models.OrderStatus) error
	Find(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error)
}

type PaymentStore interface {
	Insert(ctx context.Context, payment *models.Payment) error
	FindByOrder(ctx context.Context, orderID string) ([]*models.Payment, error)
}

type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	// EnsureUser crea el usuario si no existe y devuelve el documento guardado
	EnsureUser(ctx context.Context, user *models.User) (*models.User, error)
	SetLastOrderID(ctx context.Context, id, orderID string) error
	SetRole(ctx context.Context, id, role string) error
	FindAll(ctx context.Context) ([]*models.User, error)
}

type AddressStore interface {
	FindByUser(ctx context.Context, userID string) ([]*models.Address, error)
	FindByID(ctx context.Context, userID string, id primitive.ObjectID) (*models.Address, error)
	// SaveAsDefault guarda la dirección como predeterminada y desmarca
	// todas las demás del usuario en un solo lote. Es atómico cuando se
	// ejecuta dentro de TxManager.WithTransaction.
	SaveAsDefault(ctx context.Context, address *models.Address) error
	SetDefault(ctx context.Context, userID string, id primitive.ObjectID) error
	Delete(ctx context.Context, userID string, id primitive.ObjectID) error
}

type MostSellerStore interface {
	Increment(ctx context.Context, productID primitive.ObjectID, name string, quantity int) error
	// Top devuelve los n más vendidos; n <= 0 devuelve todos
	Top(ctx context.Context, n int) ([]*models.MostSellerCounter, error)
}

// TxManager ejecuta fn dentro de una transacción multi-documento.
// Los repositorios llamados con el ctx recibido participan en ella.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Set agrupa todos los repositorios de un mismo backend
type Set struct {
	Products    ProductStore
	Carts       CartStore
	CartWatcher CartWatcher
	Orders      OrderStore
	Payments    PaymentStore
	Users       UserStore
	Addresses   AddressStore
	MostSellers MostSellerStore
	Tx          TxManager
}

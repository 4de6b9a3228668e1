package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"grocery-mart/internal/database"
)

type MongoTxManager struct {
	client *mongo.Client
}

func NewMongoTxManager(client *mongo.Client) *MongoTxManager {
	return &MongoTxManager{client: client}
}

// WithTransaction abre una sesión y ejecuta fn en una transacción.
// El driver reintenta fn completo ante errores transitorios (conflictos de escritura).
func (m *MongoTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// NewMongoSet arma todos los repositorios sobre la base de datos
func NewMongoSet(client *mongo.Client, db *mongo.Database) Set {
	carts := NewCartRepository(db.Collection(database.CartsCollection))
	return Set{
		Products:    NewProductRepository(db.Collection(database.ProductsCollection)),
		Carts:       carts,
		CartWatcher: carts,
		Orders:      NewOrderRepository(db.Collection(database.OrdersCollection)),
		Payments:    NewPaymentRepository(db.Collection(database.PaymentsCollection)),
		Users:       NewUserRepository(db.Collection(database.UsersCollection)),
		Addresses:   NewAddressRepository(db.Collection(database.AddressesCollection)),
		MostSellers: NewMostSellerRepository(db.Collection(database.MostSellersCollection)),
		Tx:          NewMongoTxManager(client),
	}
}

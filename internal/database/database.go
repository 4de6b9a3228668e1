package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ProductsCollection    = "products"
	CartsCollection       = "carts"
	OrdersCollection      = "orders"
	PaymentsCollection    = "payments"
	UsersCollection       = "users"
	AddressesCollection   = "addresses"
	MostSellersCollection = "most_sellers"
)

// Connect abre el cliente y verifica la conexión con un ping
func Connect(uri string) *mongo.Client {
	if uri == "" {
		log.Fatal("❌ MONGO_URI must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("❌ Failed to connect MongoDB: %v", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("❌ MongoDB ping failed: %v", err)
	}

	log.Println("✅ Connected to MongoDB")
	return client
}

// EnsureIndexes crea colecciones e índices. Las transacciones no pueden
// crear colecciones en servidores antiguos, así que se crean antes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	existing, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}

	for _, name := range []string{
		ProductsCollection, CartsCollection, OrdersCollection, PaymentsCollection,
		UsersCollection, AddressesCollection, MostSellersCollection,
	} {
		if have[name] {
			continue
		}
		if err := db.CreateCollection(ctx, name); err != nil {
			return err
		}
	}

	indexes := map[string][]mongo.IndexModel{
		ProductsCollection: {
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "is_deleted", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		OrdersCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "payment_status", Value: 1}, {Key: "updated_at", Value: 1}}},
		},
		PaymentsCollection: {
			{Keys: bson.D{{Key: "order_id", Value: 1}}},
		},
		AddressesCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "default_address", Value: 1}}},
		},
		MostSellersCollection: {
			{Keys: bson.D{{Key: "quantity_sold", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}

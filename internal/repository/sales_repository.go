package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"grocery-mart/internal/models"
)

type MostSellerRepository struct {
	collection *mongo.Collection
}

func NewMostSellerRepository(collection *mongo.Collection) *MostSellerRepository {
	return &MostSellerRepository{collection: collection}
}

// Increment suma unidades vendidas, creando el contador si no existe
func (r *MostSellerRepository) Increment(ctx context.Context, productID primitive.ObjectID, name string, quantity int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"quantity_sold": quantity},
		"$set": bson.M{"product_name": name, "updated_at": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": productID}, update, options.Update().SetUpsert(true))
	return err
}

func (r *MostSellerRepository) Top(ctx context.Context, n int) ([]*models.MostSellerCounter, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "quantity_sold", Value: -1}, {Key: "product_name", Value: 1}})
	if n > 0 {
		opts.SetLimit(int64(n))
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counters := make([]*models.MostSellerCounter, 0)
	if err := cursor.All(ctx, &counters); err != nil {
		return nil, err
	}
	return counters, nil
}

type PaymentRepository struct {
	collection *mongo.Collection
}

func NewPaymentRepository(collection *mongo.Collection) *PaymentRepository {
	return &PaymentRepository{collection: collection}
}

// Insert agrega un pago; los pagos nunca se modifican
func (r *PaymentRepository) Insert(ctx context.Context, payment *models.Payment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, payment)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateID
	}
	return err
}

func (r *PaymentRepository) FindByOrder(ctx context.Context, orderID string) ([]*models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"order_id": orderID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	payments := make([]*models.Payment, 0)
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

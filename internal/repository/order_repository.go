package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"grocery-mart/internal/models"
)

type OrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(collection *mongo.Collection) *OrderRepository {
	return &OrderRepository{collection: collection}
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var order models.Order
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) Insert(ctx context.Context, order *models.Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateID
		}
		return err
	}
	return nil
}

// Overwrite actualiza una orden pendiente con el contenido actual del carrito
func (r *OrderRepository) Overwrite(ctx context.Context, order *models.Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"_id": order.ID, "payment_status": models.PaymentStatusPending}
	update := bson.M{"$set": bson.M{
		"products":     order.Products,
		"total_amount": order.TotalAmount,
		"total_saved":  order.TotalSaved,
		"total_items":  order.TotalItems,
		"updated_at":   order.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrOrderNotPending
	}
	return nil
}

func (r *OrderRepository) MarkPaid(ctx context.Context, order *models.Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"_id": order.ID, "payment_status": models.PaymentStatusPending}
	update := bson.M{"$set": bson.M{
		"payment_status":      order.PaymentStatus,
		"order_status":        order.OrderStatus,
		"selected_address_id": order.SelectedAddressID,
		"payment_id":          order.PaymentID,
		"paid_at":             order.PaidAt,
		"updated_at":          order.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrOrderNotPending
	}
	return nil
}

func (r *OrderRepository) FlagStockFailed(ctx context.Context, id, paymentID string) error {
	filter := bson.M{"_id": id, "payment_status": models.PaymentStatusPending}
	set := bson.M{
		"payment_status": models.PaymentStatusStockFailed,
		"payment_id":     paymentID,
		"updated_at":     time.Now(),
	}
	return r.set(ctx, filter, set, ErrOrderNotPending)
}

func (r *OrderRepository) SetOrderStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	filter := bson.M{
		"_id":            id,
		"payment_status": models.PaymentStatusPaid,
		"order_status":   from,
	}
	return r.set(ctx, filter, bson.M{"order_status": to, "updated_at": time.Now()}, ErrStatusChanged)
}

func (r *OrderRepository) set(ctx context.Context, filter, set bson.M, unmatched error) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return unmatched
	}
	return nil
}

// Find lista órdenes, las más recientes primero
func (r *OrderRepository) Find(ctx context.Context, f models.OrderFilter) ([]*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.PaymentStatus != "" {
		filter["payment_status"] = f.PaymentStatus
	}
	if f.OrderStatus != "" {
		filter["order_status"] = f.OrderStatus
	}
	if !f.UpdatedBefore.IsZero() {
		filter["updated_at"] = bson.M{"$lt": f.UpdatedBefore}
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := make([]*models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

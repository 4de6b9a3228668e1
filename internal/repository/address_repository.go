package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"grocery-mart/internal/models"
)

type AddressRepository struct {
	collection *mongo.Collection
}

func NewAddressRepository(collection *mongo.Collection) *AddressRepository {
	return &AddressRepository{collection: collection}
}

// FindByUser lista las direcciones, la predeterminada primero
func (r *AddressRepository) FindByUser(ctx context.Context, userID string) ([]*models.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "default_address", Value: -1}, {Key: "updated_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	addresses := make([]*models.Address, 0)
	if err := cursor.All(ctx, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (r *AddressRepository) FindByID(ctx context.Context, userID string, id primitive.ObjectID) (*models.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var address models.Address
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&address)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	return &address, nil
}

func (r *AddressRepository) SaveAsDefault(ctx context.Context, address *models.Address) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	address.DefaultAddress = true
	writes := []mongo.WriteModel{
		mongo.NewUpdateManyModel().
			SetFilter(bson.M{"user_id": address.UserID, "_id": bson.M{"$ne": address.ID}}).
			SetUpdate(bson.M{"$set": bson.M{"default_address": false}}),
		mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": address.ID, "user_id": address.UserID}).
			SetReplacement(address).
			SetUpsert(true),
	}

	_, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	return err
}

func (r *AddressRepository) SetDefault(ctx context.Context, userID string, id primitive.ObjectID) error {
	if _, err := r.FindByID(ctx, userID, id); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	writes := []mongo.WriteModel{
		mongo.NewUpdateManyModel().
			SetFilter(bson.M{"user_id": userID, "_id": bson.M{"$ne": id}}).
			SetUpdate(bson.M{"$set": bson.M{"default_address": false}}),
		mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id, "user_id": userID}).
			SetUpdate(bson.M{"$set": bson.M{"default_address": true, "updated_at": time.Now()}}),
	}

	_, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	return err
}

func (r *AddressRepository) Delete(ctx context.Context, userID string, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrAddressNotFound
	}
	return nil
}

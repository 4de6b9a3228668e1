package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"grocery-mart/internal/models"
)

type CartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(collection *mongo.Collection) *CartRepository {
	return &CartRepository{collection: collection}
}

// Get obtiene el carrito del usuario o uno vacío
func (r *CartRepository) Get(ctx context.Context, userID string) (*models.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var cart models.Cart
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.NewCart(userID), nil
		}
		return nil, err
	}
	if cart.Lines == nil {
		cart.Lines = []models.CartLine{}
	}
	return &cart, nil
}

// Save reemplaza el documento completo (última escritura gana)
func (r *CartRepository) Save(ctx context.Context, cart *models.Cart) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cart.UpdatedAt = time.Now()
	if cart.Lines == nil {
		cart.Lines = []models.CartLine{}
	}

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": cart.UserID}, cart, options.Replace().SetUpsert(true))
	return err
}

// Clear vacía el carrito sin borrar el documento
func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"products": []models.CartLine{}, "updated_at": time.Now()}},
		options.Update().SetUpsert(true),
	)
	return err
}

type cartChange struct {
	OperationType string       `bson:"operationType"`
	FullDocument  *models.Cart `bson:"fullDocument"`
}

// Watch emite el estado actual y luego cada cambio vía change streams
func (r *CartRepository) Watch(ctx context.Context, userID string) (<-chan *models.Cart, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"documentKey._id": userID}}},
	}
	stream, err := r.collection.Watch(ctx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, err
	}

	current, err := r.Get(ctx, userID)
	if err != nil {
		stream.Close(context.Background())
		return nil, err
	}

	out := make(chan *models.Cart, 1)
	out <- current

	go func() {
		defer close(out)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			var change cartChange
			if err := stream.Decode(&change); err != nil {
				log.Printf("❌ cart stream decode for %s: %v", userID, err)
				continue
			}

			cart := change.FullDocument
			if change.OperationType == "delete" || cart == nil {
				cart = models.NewCart(userID)
			}
			if cart.Lines == nil {
				cart.Lines = []models.CartLine{}
			}

			select {
			case out <- cart:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			log.Printf("❌ cart stream for %s stopped: %v", userID, err)
		}
	}()

	return out, nil
}

package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"grocery-mart/internal/models"
)

// SortableFields son los campos permitidos en sort_by
var SortableFields = map[string]bool{
	"name":               true,
	"price":              true,
	"discounted_price":   true,
	"available_quantity": true,
	"created_at":         true,
}

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(collection *mongo.Collection) *ProductRepository {
	return &ProductRepository{
		collection: collection,
	}
}

// Create crea un nuevo producto
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	product.IsDeleted = false

	_, err := r.collection.InsertOne(ctx, product)
	return err
}

// FindByID obtiene un producto por ID
func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var product models.Product
	filter := bson.M{
		"_id":        id,
		"is_deleted": false,
	}

	err := r.collection.FindOne(ctx, filter).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	return &product, nil
}

// FindAll lista productos con paginación y filtros.
// PageSize <= 0 devuelve todos los que coinciden.
func (r *ProductRepository) FindAll(ctx context.Context, q models.ProductQuery) ([]*models.Product, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"is_deleted": false}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Search != "" {
		pattern := regexp.QuoteMeta(q.Search)
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": pattern, "$options": "i"}},
			{"description": bson.M{"$regex": pattern, "$options": "i"}},
			{"category": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	// Contar total en paralelo
	totalCh := make(chan int64, 1)
	errCh := make(chan error, 1)

	go func() {
		total, err := r.collection.CountDocuments(ctx, filter)
		if err != nil {
			errCh <- err
			return
		}
		totalCh <- total
	}()

	findOptions := options.Find()

	if q.Page > 0 && q.PageSize > 0 {
		skip := (q.Page - 1) * q.PageSize
		findOptions.SetSkip(int64(skip))
		findOptions.SetLimit(int64(q.PageSize))
	}

	sortField := "created_at"
	sortOrder := -1
	if SortableFields[q.SortBy] {
		sortField = q.SortBy
	}
	if q.SortOrder == "asc" {
		sortOrder = 1
	}
	findOptions.SetSort(bson.D{{Key: sortField, Value: sortOrder}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	products := make([]*models.Product, 0)
	if err = cursor.All(ctx, &products); err != nil {
		return nil, 0, err
	}

	// Esperar el conteo
	var total int64
	select {
	case total = <-totalCh:
	case err := <-errCh:
		return products, 0, err
	case <-ctx.Done():
		return products, 0, ctx.Err()
	}

	return products, total, nil
}

// Update actualiza parcialmente un producto
func (r *ProductRepository) Update(ctx context.Context, id primitive.ObjectID, update *models.ProductUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updated_at": time.Now()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.DiscountedPrice != nil {
		set["discounted_price"] = *update.DiscountedPrice
	}
	if update.AvailableQuantity != nil {
		set["available_quantity"] = *update.AvailableQuantity
	}
	if update.ImageURL != nil {
		set["image_url"] = *update.ImageURL
	}
	if update.Images != nil {
		set["images"] = update.Images
	}

	return r.updateOne(ctx, id, set)
}

// SetStock escribe el stock disponible; dentro de una transacción
// compite con otras escrituras y el driver reintenta ante conflicto
func (r *ProductRepository) SetStock(ctx context.Context, id primitive.ObjectID, stock int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.updateOne(ctx, id, bson.M{
		"available_quantity": stock,
		"updated_at":         time.Now(),
	})
}

// SoftDelete marca un producto como eliminado
func (r *ProductRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.updateOne(ctx, id, bson.M{
		"is_deleted": true,
		"updated_at": time.Now(),
	})
}

func (r *ProductRepository) updateOne(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	filter := bson.M{
		"_id":        id,
		"is_deleted": false,
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

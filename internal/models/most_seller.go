package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MostSellerCounter acumula unidades vendidas por producto; solo crece
type MostSellerCounter struct {
	ProductID    primitive.ObjectID `json:"product_id" bson:"_id"`
	ProductName  string             `json:"product_name" bson:"product_name"`
	QuantitySold int                `json:"quantity_sold" bson:"quantity_sold"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

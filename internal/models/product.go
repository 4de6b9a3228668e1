package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product representa un producto del catálogo con su stock disponible
type Product struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name              string             `json:"name" bson:"name" binding:"required"`
	Description       string             `json:"description,omitempty" bson:"description,omitempty"`
	Category          string             `json:"category" bson:"category" binding:"required"`
	Price             float64            `json:"price" bson:"price" binding:"gte=0"`
	DiscountedPrice   float64            `json:"discounted_price" bson:"discounted_price" binding:"gte=0"`
	AvailableQuantity int                `json:"available_quantity" bson:"available_quantity" binding:"gte=0"`
	ImageURL          string             `json:"image_url,omitempty" bson:"image_url,omitempty"`
	Images            []string           `json:"images,omitempty" bson:"images,omitempty"`
	MostSeller        bool               `json:"most_seller" bson:"-"`
	IsDeleted         bool               `json:"-" bson:"is_deleted"`
	CreatedAt         time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" bson:"updated_at"`
}

// ProductUpdate representa los campos actualizables de un producto
type ProductUpdate struct {
	Name              *string  `json:"name,omitempty"`
	Description       *string  `json:"description,omitempty"`
	Category          *string  `json:"category,omitempty"`
	Price             *float64 `json:"price,omitempty" binding:"omitempty,gte=0"`
	DiscountedPrice   *float64 `json:"discounted_price,omitempty" binding:"omitempty,gte=0"`
	AvailableQuantity *int     `json:"available_quantity,omitempty" binding:"omitempty,gte=0"`
	ImageURL          *string  `json:"image_url,omitempty"`
	Images            []string `json:"images,omitempty"`
}

// Empty indica si la actualización no trae ningún campo
func (u *ProductUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Category == nil &&
		u.Price == nil && u.DiscountedPrice == nil && u.AvailableQuantity == nil &&
		u.ImageURL == nil && u.Images == nil
}

// Apply copia los campos presentes sobre el producto
func (u *ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.DiscountedPrice != nil {
		p.DiscountedPrice = *u.DiscountedPrice
	}
	if u.AvailableQuantity != nil {
		p.AvailableQuantity = *u.AvailableQuantity
	}
	if u.ImageURL != nil {
		p.ImageURL = *u.ImageURL
	}
	if u.Images != nil {
		p.Images = u.Images
	}
}

// ProductQuery agrupa filtros, orden y paginación del listado
type ProductQuery struct {
	Page      int
	PageSize  int
	Category  string
	Search    string
	SortBy    string
	SortOrder string
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AddressTypeHome  = "home"
	AddressTypeWork  = "work"
	AddressTypeHotel = "hotel"
	AddressTypeOther = "other"
)

type Address struct {
	ID             primitive.ObjectID `json:"address_id" bson:"_id,omitempty"`
	UserID         string             `json:"user_id" bson:"user_id"`
	DefaultAddress bool               `json:"default_address" bson:"default_address"`
	Name           string             `json:"name" bson:"name" binding:"required"`
	Phone          string             `json:"phone" bson:"phone" binding:"required"`
	Line1          string             `json:"line1" bson:"line1" binding:"required"`
	Line2          string             `json:"line2,omitempty" bson:"line2,omitempty"`
	Landmark       string             `json:"landmark,omitempty" bson:"landmark,omitempty"`
	City           string             `json:"city" bson:"city" binding:"required"`
	State          string             `json:"state" bson:"state" binding:"required"`
	Pincode        string             `json:"pincode" bson:"pincode" binding:"required,numeric,len=6"`
	AddressType    string             `json:"address_type" bson:"address_type" binding:"required,oneof=home work hotel other"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

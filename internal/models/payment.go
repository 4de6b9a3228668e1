package models

import "time"

// Payment es el registro inmutable de un cobro confirmado
type Payment struct {
	ID         string    `json:"payment_id" bson:"_id"`
	OrderID    string    `json:"order_id" bson:"order_id"`
	UserID     string    `json:"user_id" bson:"user_id"`
	Amount     float64   `json:"amount" bson:"amount"`
	Method     string    `json:"method" bson:"method"`
	GatewayRef string    `json:"gateway_ref,omitempty" bson:"gateway_ref,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string
type OrderStatus string

const (
	PaymentStatusPending     PaymentStatus = "Pending"
	PaymentStatusPaid        PaymentStatus = "Paid"
	// Cobro confirmado pero el stock no alcanzó: requiere conciliación manual
	PaymentStatusStockFailed PaymentStatus = "PaymentSucceededStockFailed"

	OrderStatusProcessing     OrderStatus = "Processing"
	OrderStatusShipped        OrderStatus = "Shipped"
	OrderStatusOutForDelivery OrderStatus = "Out for Delivery"
	OrderStatusDelivered      OrderStatus = "Delivered"
)

// orderFlow es el orden de avance de una orden pagada
var orderFlow = []OrderStatus{
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
}

// Rank devuelve la posición en el flujo, -1 si el estado no existe
func (s OrderStatus) Rank() int {
	for i, st := range orderFlow {
		if st == s {
			return i
		}
	}
	return -1
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered
}

// ParseOrderStatus acepta el estado sin importar mayúsculas ni separadores
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	norm := strings.NewReplacer("_", " ", "-", " ").Replace(strings.ToLower(strings.TrimSpace(raw)))
	for _, st := range orderFlow {
		if strings.ToLower(string(st)) == norm {
			return st, true
		}
	}
	return "", false
}

// Order es el pedido creado desde el carrito
type Order struct {
	ID                string             `json:"order_id" bson:"_id"`
	UserID            string             `json:"user_id" bson:"user_id"`
	Products          []CartLine         `json:"products" bson:"products"`
	TotalAmount       float64            `json:"total_amount" bson:"total_amount"`
	TotalSaved        float64            `json:"total_saved" bson:"total_saved"`
	TotalItems        int                `json:"total_items" bson:"total_items"`
	PaymentStatus     PaymentStatus      `json:"payment_status" bson:"payment_status"`
	OrderStatus       OrderStatus        `json:"order_status,omitempty" bson:"order_status,omitempty"`
	SelectedAddressID primitive.ObjectID `json:"selected_address_id,omitempty" bson:"selected_address_id,omitempty"`
	PaymentID         string             `json:"payment_id,omitempty" bson:"payment_id,omitempty"`
	CreatedAt         time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" bson:"updated_at"`
	PaidAt            *time.Time         `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
}

// SetProducts reemplaza las líneas y recalcula los totales
func (o *Order) SetProducts(lines []CartLine) {
	o.Products = CloneLines(lines)
	t := TotalsOf(o.Products)
	o.TotalAmount = t.TotalAmount
	o.TotalSaved = t.TotalSaved
	o.TotalItems = t.TotalItems
}

func (o *Order) Pending() bool {
	return o.PaymentStatus == PaymentStatusPending
}

func (o *Order) Clone() *Order {
	out := *o
	out.Products = CloneLines(o.Products)
	if o.PaidAt != nil {
		t := *o.PaidAt
		out.PaidAt = &t
	}
	return &out
}

// OrderFilter filtra el listado de órdenes de administración
type OrderFilter struct {
	UserID        string
	PaymentStatus PaymentStatus
	OrderStatus   OrderStatus
	UpdatedBefore time.Time
}

// Matches aplica el filtro en memoria
func (f OrderFilter) Matches(o *Order) bool {
	if f.UserID != "" && o.UserID != f.UserID {
		return false
	}
	if f.PaymentStatus != "" && o.PaymentStatus != f.PaymentStatus {
		return false
	}
	if f.OrderStatus != "" && o.OrderStatus != f.OrderStatus {
		return false
	}
	if !f.UpdatedBefore.IsZero() && !o.UpdatedAt.Before(f.UpdatedBefore) {
		return false
	}
	return true
}

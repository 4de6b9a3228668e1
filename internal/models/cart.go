package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartLine es un producto dentro del carrito, con los precios copiados al agregarlo
type CartLine struct {
	ProductID       primitive.ObjectID `json:"product_id" bson:"product_id"`
	Name            string             `json:"name" bson:"name"`
	Category        string             `json:"category,omitempty" bson:"category,omitempty"`
	ImageURL        string             `json:"image_url,omitempty" bson:"image_url,omitempty"`
	Price           float64            `json:"price" bson:"price"`
	DiscountedPrice float64            `json:"discounted_price" bson:"discounted_price"`
	Quantity        int                `json:"quantity" bson:"quantity"`
}

// NewCartLine copia el snapshot de precios del producto
func NewCartLine(p *Product, quantity int) CartLine {
	return CartLine{
		ProductID:       p.ID,
		Name:            p.Name,
		Category:        p.Category,
		ImageURL:        p.ImageURL,
		Price:           p.Price,
		DiscountedPrice: p.DiscountedPrice,
		Quantity:        quantity,
	}
}

// UnitPrice es el precio que se cobra por unidad.
// Un descuento inválido o en cero cae al precio de lista.
func (l CartLine) UnitPrice() float64 {
	if valid(l.DiscountedPrice) && l.DiscountedPrice > 0 {
		return l.DiscountedPrice
	}
	if valid(l.Price) {
		return l.Price
	}
	return 0
}

func (l CartLine) savedPerUnit() float64 {
	if !valid(l.Price) {
		return 0
	}
	return l.Price - l.UnitPrice()
}

func valid(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f >= 0
}

// Cart es el documento único de carrito por usuario
type Cart struct {
	UserID    string     `json:"user_id" bson:"_id"`
	Lines     []CartLine `json:"products" bson:"products"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// CartTotals son valores derivados, nunca se guardan
type CartTotals struct {
	TotalAmount float64 `json:"total_amount"`
	TotalSaved  float64 `json:"total_saved"`
	TotalItems  int     `json:"total_items"`
}

func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Lines: []CartLine{}}
}

// Index devuelve la posición de la línea del producto o -1
func (c *Cart) Index(productID primitive.ObjectID) int {
	for i, line := range c.Lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

// Remove quita la línea del producto; devuelve false si no estaba
func (c *Cart) Remove(productID primitive.ObjectID) bool {
	i := c.Index(productID)
	if i < 0 {
		return false
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return true
}

func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) Clone() *Cart {
	out := *c
	out.Lines = CloneLines(c.Lines)
	return &out
}

func (c *Cart) Totals() CartTotals {
	return TotalsOf(c.Lines)
}

// TotalsOf calcula monto, ahorro y cantidad de artículos
func TotalsOf(lines []CartLine) CartTotals {
	var t CartTotals
	for _, line := range lines {
		qty := float64(line.Quantity)
		t.TotalAmount += line.UnitPrice() * qty
		t.TotalSaved += line.savedPerUnit() * qty
		t.TotalItems += line.Quantity
	}
	return t
}

func CloneLines(lines []CartLine) []CartLine {
	out := make([]CartLine, len(lines))
	copy(out, lines)
	return out
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-mart/internal/middleware"
	"grocery-mart/internal/models"
	"grocery-mart/internal/service"
)

type CartHandler struct {
	carts *service.CartService
}

func NewCartHandler(carts *service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

type cartMutation func(c *gin.Context, session *models.Session, productID primitive.ObjectID) (*models.Cart, error)

// mutate resuelve el producto de la ruta y responde con el carrito resultante
func (h *CartHandler) mutate(fn cartMutation) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := service.ParseID("product_id", c.Param("productId"))
		if err != nil {
			respondError(c, err)
			return
		}

		cart, err := fn(c, middleware.SessionFrom(c), productID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, service.NewCartView(cart))
	}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	cart, err := h.carts.Get(ctx, middleware.SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.NewCartView(cart))
}

func (h *CartHandler) AddToCart() gin.HandlerFunc {
	return h.mutate(func(c *gin.Context, s *models.Session, id primitive.ObjectID) (*models.Cart, error) {
		ctx, cancel := requestContext(c)
		defer cancel()
		return h.carts.AddToCart(ctx, s, id)
	})
}

func (h *CartHandler) Increment() gin.HandlerFunc {
	return h.mutate(func(c *gin.Context, s *models.Session, id primitive.ObjectID) (*models.Cart, error) {
		ctx, cancel := requestContext(c)
		defer cancel()
		return h.carts.Increment(ctx, s, id)
	})
}

func (h *CartHandler) Decrement() gin.HandlerFunc {
	return h.mutate(func(c *gin.Context, s *models.Session, id primitive.ObjectID) (*models.Cart, error) {
		ctx, cancel := requestContext(c)
		defer cancel()
		return h.carts.Decrement(ctx, s, id)
	})
}

// RemoveItem responde con el token para deshacer
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, err := service.ParseID("product_id", c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	cart, token, err := h.carts.Remove(ctx, middleware.SessionFrom(c), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cart":       service.NewCartView(cart),
		"undo_token": token,
	})
}

type undoRequest struct {
	Token string `json:"undo_token" binding:"required"`
}

func (h *CartHandler) Undo(c *gin.Context) {
	var req undoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	cart, err := h.carts.Undo(ctx, middleware.SessionFrom(c), req.Token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.NewCartView(cart))
}

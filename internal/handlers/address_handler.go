package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-mart/internal/middleware"
	"grocery-mart/internal/models"
	"grocery-mart/internal/service"
)

type AddressHandler struct {
	addresses *service.AddressService
}

func NewAddressHandler(addresses *service.AddressService) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

func (h *AddressHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	addresses, err := h.addresses.List(ctx, middleware.SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": addresses})
}

// Create guarda una dirección nueva como predeterminada
func (h *AddressHandler) Create(c *gin.Context) {
	h.save(c, false)
}

// Update reemplaza la dirección y la deja como predeterminada
func (h *AddressHandler) Update(c *gin.Context) {
	h.save(c, true)
}

func (h *AddressHandler) save(c *gin.Context, existing bool) {
	var address models.Address
	if err := c.ShouldBindJSON(&address); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	address.ID = primitive.NilObjectID
	if existing {
		id, err := service.ParseID("id", c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		address.ID = id
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	saved, err := h.addresses.Save(ctx, middleware.SessionFrom(c), &address)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if existing {
		status = http.StatusOK
	}
	c.JSON(status, saved)
}

func (h *AddressHandler) Select(c *gin.Context) {
	id, err := service.ParseID("id", c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.addresses.Select(ctx, middleware.SessionFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "default address updated"})
}

func (h *AddressHandler) Delete(c *gin.Context) {
	id, err := service.ParseID("id", c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.addresses.Delete(ctx, middleware.SessionFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "address deleted"})
}

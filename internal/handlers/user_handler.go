package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"grocery-mart/internal/middleware"
	"grocery-mart/internal/service"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Me devuelve la sesión resuelta del token
func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.SessionFrom(c))
}

func (h *UserHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.users.List(ctx, middleware.SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

type roleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

func (h *UserHandler) SetRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.users.SetRole(ctx, middleware.SessionFrom(c), c.Param("id"), req.Role); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "role updated"})
}

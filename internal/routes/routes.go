package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"grocery-mart/internal/auth"
	"grocery-mart/internal/config"
	"grocery-mart/internal/handlers"
	"grocery-mart/internal/middleware"
	"grocery-mart/internal/models"
	"grocery-mart/internal/service"
)

func RegisterRoutes(router *gin.Engine, cfg *config.Config, svc *service.Services, verifier auth.Verifier) {
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	products := handlers.NewProductHandler(svc.Catalog)
	carts := handlers.NewCartHandler(svc.Cart)
	checkout := handlers.NewCheckoutHandler(svc.Orders, svc.Checkout, cfg.RedirectDelay)
	orders := handlers.NewOrderHandler(svc.Orders)
	addresses := handlers.NewAddressHandler(svc.Addresses)
	mostSellers := handlers.NewMostSellerHandler(svc.MostSellers)
	users := handlers.NewUserHandler(svc.Users)

	v1 := router.Group("/v1")
	{
		v1.GET("/products", products.ListProducts)
		v1.GET("/products/:id", products.GetProduct)
		v1.GET("/most-sellers", mostSellers.Top)
	}

	authed := v1.Group("", middleware.Authenticate(verifier, svc.Users))
	{
		authed.GET("/me", users.Me)

		authed.GET("/cart", carts.GetCart)
		authed.POST("/cart/items/:productId", carts.AddToCart())
		authed.POST("/cart/items/:productId/increment", carts.Increment())
		authed.POST("/cart/items/:productId/decrement", carts.Decrement())
		authed.DELETE("/cart/items/:productId", carts.RemoveItem)
		authed.POST("/cart/undo", carts.Undo)
		authed.GET("/cart/ws", carts.StreamCart)

		authed.POST("/checkout", checkout.Checkout)
		authed.POST("/checkout/:orderId/revalidate", checkout.Revalidate)
		authed.POST("/checkout/:orderId/pay", checkout.Pay)

		authed.GET("/orders", orders.ListMine)
		authed.GET("/orders/:id", orders.Get)

		authed.GET("/addresses", addresses.List)
		authed.POST("/addresses", addresses.Create)
		authed.PUT("/addresses/:id", addresses.Update)
		authed.POST("/addresses/:id/select", addresses.Select)
		authed.DELETE("/addresses/:id", addresses.Delete)
	}

	admin := authed.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/products", products.CreateProduct)
		admin.POST("/products/import", products.ImportProducts)
		admin.PATCH("/products/:id", products.UpdateProduct)
		admin.DELETE("/products/:id", products.DeleteProduct)

		admin.GET("/orders", orders.ListAll)
		admin.PUT("/orders/:id/status", orders.AdvanceStatus)

		admin.GET("/most-sellers/export", mostSellers.Export)

		admin.GET("/users", users.List)
		admin.PUT("/users/:id/role", users.SetRole)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type Deps struct {
	DB   *gorm.DB
	Auth *middleware.Auth
	// DetailedErrors exposes gateway error text to clients outside production.
	DetailedErrors bool

	AuthHandler      *AuthHTTP
	CatalogHandler   *CatalogHTTP
	CartHandler      *CartHTTP
	GuestCartHandler *GuestCartHTTP
	AddressHandler   *AddressHTTP
	CheckoutHandler  *CheckoutHTTP
	WebhookHandler   *WebhookHTTP
	OrderHandler     *OrderHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler(d.DetailedErrors)

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.DB == nil {
			return c.NoContent(http.StatusOK)
		}
		if err := pkgdb.Ping(c.Request().Context(), d.DB); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/logout", d.AuthHandler.Logout)

	catalog := e.Group("/catalog")
	catalog.GET("/products", d.CatalogHandler.ListProducts)
	catalog.GET("/products/by-ids", d.CatalogHandler.ProductsByIDs)
	catalog.GET("/products/:slug", d.CatalogHandler.ProductBySlug)
	catalog.GET("/products/:slug/related", d.CatalogHandler.Related)
	catalog.GET("/categories", d.CatalogHandler.Categories)
	catalog.POST("/products", d.CatalogHandler.CreateProduct, d.Auth.RequireAdmin)
	catalog.PATCH("/products/:id", d.CatalogHandler.PatchProduct, d.Auth.RequireAdmin)
	catalog.DELETE("/products/:id", d.CatalogHandler.DeleteProduct, d.Auth.RequireAdmin)
	catalog.POST("/products/:id/reviews", d.CatalogHandler.SubmitReview, d.Auth.RequireAuth)

	cart := e.Group("/cart")
	cart.Use(d.Auth.RequireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.GET("/count", d.CartHandler.Count)
	cart.PATCH("/items/:id", d.CartHandler.UpdateQuantity)
	cart.DELETE("/items/:id", d.CartHandler.Remove)
	cart.POST("/merge", d.CartHandler.Merge)

	guest := e.Group("/guest-cart")
	guest.Use(d.Auth.OptionalAuth)
	guest.GET("", d.GuestCartHandler.Get)
	guest.DELETE("", d.GuestCartHandler.Clear)
	guest.POST("/items", d.GuestCartHandler.AddItem)
	guest.PATCH("/items/:product_id", d.GuestCartHandler.UpdateItem)
	guest.DELETE("/items/:product_id", d.GuestCartHandler.RemoveItem)

	addresses := e.Group("/addresses")
	addresses.Use(d.Auth.RequireAuth)
	addresses.GET("", d.AddressHandler.List)
	addresses.POST("", d.AddressHandler.Create)

	checkout := e.Group("/checkout")
	checkout.Use(d.Auth.RequireAuth)
	checkout.POST("/payment-intent", d.CheckoutHandler.PaymentIntent)
	checkout.POST("/session", d.CheckoutHandler.Session)

	e.POST("/webhooks/stripe", d.WebhookHandler.Stripe)

	orders := e.Group("/orders")
	orders.Use(d.Auth.RequireAuth)
	orders.GET("", d.OrderHandler.List)
	orders.GET("/session/:session_id", d.OrderHandler.GetBySession)
	orders.GET("/:id", d.OrderHandler.Get)
}

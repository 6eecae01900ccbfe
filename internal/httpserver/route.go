package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/middleware/profile"
)

type Deps struct {
	Products *ProductHTTP
	Cart     *CartHTTP
	Auth     *AuthHTTP
	Checkout *CheckoutHTTP
	Chat     *ChatHTTP

	Profile profile.Config
	// Ready reports whether backing stores are reachable; nil means always ready.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "error": err.Error()})
			}
		}
		return c.NoContent(http.StatusOK)
	})

	v1 := e.Group("/api/v1")

	products := v1.Group("/products")
	products.GET("", d.Products.List)
	products.GET("/:id", d.Products.Get)
	v1.GET("/categories", d.Products.Categories)

	withProfile := v1.Group("", profile.Middleware(d.Profile))

	cart := withProfile.Group("/cart")
	cart.GET("", d.Cart.Get)
	cart.DELETE("", d.Cart.Clear)
	cart.POST("/items", d.Cart.AddItem)
	cart.GET("/items/:id", d.Cart.GetItem)
	cart.PATCH("/items/:id", d.Cart.UpdateQuantity)
	cart.DELETE("/items/:id", d.Cart.RemoveItem)

	auth := withProfile.Group("/auth")
	auth.POST("/login", d.Auth.Login)
	auth.POST("/logout", d.Auth.Logout)
	auth.GET("/me", d.Auth.Me)

	checkout := withProfile.Group("/checkout")
	checkout.GET("", d.Checkout.Get)
	checkout.POST("", d.Checkout.Submit)
	checkout.POST("/validate", d.Checkout.ValidateField)

	chat := withProfile.Group("/chat")
	chat.GET("", d.Chat.Get)
	chat.POST("", d.Chat.Send)
}

package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/bewear-pt/storefront/app/controllers"
	"github.com/bewear-pt/storefront/internal/pkg/env"
	"github.com/bewear-pt/storefront/internal/pkg/middleware"
)

func (h *HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return h.deps.DisableCSRF || strings.HasPrefix(c.Path(), "/api/")
		},
	}

	store := controllers.NewStoreController(h.deps.Repos.Catalog, h.deps.ViewCounter, h.deps.CacheCatalog)
	auth := controllers.NewAuthController(h.deps.Repos.User, h.deps.Captcha).WithProviders(h.providers...)
	addresses := controllers.NewAddressController(h.deps.Repos)
	cart := controllers.NewCartController(h.deps.Repos, h.deps.Checkout, h.deps.BaseURL)
	orders := controllers.NewOrderController(h.deps.Repos)

	group := app.Group("", cors.New(), csrf.New(csrfConf))

	// Catalog
	group.Get("/", store.HandleHome)
	group.Get("/category/:slug", store.HandleCategory)
	group.Get("/product-variant/:slug", store.HandleVariant)

	// Auth
	group.Get("/login", auth.HandleLoginPage)
	group.Post("/login", auth.HandleLogin)
	group.Get("/register", auth.HandleRegisterPage)
	group.Post("/register", auth.HandleRegister)
	group.Post("/logout", middleware.RequireAuth, auth.HandleLogout)

	// Cart and checkout
	group.Get("/cart", middleware.RequireAuth, cart.HandleShow)
	group.Post("/cart/items", middleware.RequireAuth, cart.HandleAddItem)
	group.Post("/cart/items/:id/decrease", middleware.RequireAuth, cart.HandleDecreaseItem)
	group.Post("/cart/items/:id/remove", middleware.RequireAuth, cart.HandleRemoveItem)
	group.Get("/cart/identification", middleware.RequireAuth, addresses.HandleIdentification)
	group.Post("/cart/shipping-address", middleware.RequireAuth, cart.HandleSetShippingAddress)
	group.Post("/cart/finish", middleware.RequireAuth, cart.HandleFinish)
	group.Get("/checkout/success", middleware.RequireAuth, cart.HandleCheckoutSuccess)

	// Shipping addresses
	group.Post("/addresses", middleware.RequireAuth, addresses.HandleCreate)
	group.Post("/addresses/:id/update", middleware.RequireAuth, addresses.HandleUpdate)
	group.Post("/addresses/:id/delete", middleware.RequireAuth, addresses.HandleDelete)

	// Orders
	group.Get("/my-orders", middleware.RequireAuth, orders.HandleMyOrders)
	group.Post("/my-orders/:id/repeat", middleware.RequireAuth, orders.HandleRepeat)
	group.Post("/my-orders/:id/cancel", middleware.RequireAuth, orders.HandleCancel)
}

package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bewear-pt/storefront/internal/pkg/middleware"
	"github.com/bewear-pt/storefront/internal/pkg/oauth"
	"github.com/bewear-pt/storefront/internal/pkg/session"
)

type HttpRouter struct {
	deps      Dependencies
	providers []string
}

func (h *HttpRouter) InstallRouter(app *fiber.App) {
	if h.deps.SessionStore != nil {
		session.SetSessionStore(h.deps.SessionStore)
	} else {
		session.NewSessionStore()
	}

	if !h.deps.SkipOAuth && oauth.Setup() {
		h.providers = oauth.Providers
	}

	// Apply UserContext middleware globally before any page route
	app.Use(middleware.UserContextMiddleware)

	h.registerPublicRoutes(app)
	h.registerCSRFProtectedRoutes(app)
}

func NewHttpRouter(deps Dependencies) *HttpRouter {
	return &HttpRouter{deps: deps}
}

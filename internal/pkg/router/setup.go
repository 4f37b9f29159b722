package router

import (
	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"

	"github.com/bewear-pt/storefront/app/controllers"
	"github.com/bewear-pt/storefront/app/repository"
	"github.com/bewear-pt/storefront/internal/pkg/events"
	"github.com/bewear-pt/storefront/internal/pkg/hcaptcha"
	"github.com/bewear-pt/storefront/internal/pkg/metrics/counter"
	"github.com/bewear-pt/storefront/internal/pkg/payment"
)

// Dependencies are the services the routes hand to the controllers.
type Dependencies struct {
	Repos               *repository.Repositories
	Payments            *payment.Service
	Checkout            payment.CheckoutCreator
	Notifier            controllers.OrderPaidNotifier
	Publisher           events.Publisher
	ViewCounter         *counter.Counter
	Captcha             *hcaptcha.Verifier
	StripeSecretKey     string
	StripeWebhookSecret string
	BaseURL             string
	CacheCatalog        bool
	// SessionStore overrides the Redis session store, e.g. in tests.
	SessionStore *fibersession.Store
	// SkipOAuth leaves the goth providers unregistered.
	SkipOAuth bool
	// DisableCSRF turns the CSRF middleware off, e.g. in handler tests.
	DisableCSRF bool
}

type Router interface {
	InstallRouter(app *fiber.App)
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	// The webhook comes first so neither the session lookup nor the API
	// limiter runs for Stripe deliveries.
	setup(app, NewWebhookRouter(deps), NewHttpRouter(deps), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}

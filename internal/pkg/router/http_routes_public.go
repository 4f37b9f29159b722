package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bewear-pt/storefront/app/controllers"
	"github.com/bewear-pt/storefront/internal/pkg/constants"
)

// WebhookRouter installs the payment provider callbacks. They carry no
// session or CSRF token and are authenticated by signature.
type WebhookRouter struct {
	deps Dependencies
}

func NewWebhookRouter(deps Dependencies) *WebhookRouter {
	return &WebhookRouter{deps: deps}
}

func (w WebhookRouter) InstallRouter(app *fiber.App) {
	webhook := controllers.NewPaymentWebhookController(
		w.deps.Payments,
		w.deps.Notifier,
		w.deps.Publisher,
		w.deps.StripeSecretKey,
		w.deps.StripeWebhookSecret,
	)
	app.Post(constants.StripeWebhookRoute, webhook.HandleStripeWebhook)
}

func (h *HttpRouter) registerPublicRoutes(app *fiber.App) {
	oauthController := controllers.NewOAuthController(h.deps.Repos.User)
	app.Get("/auth/:provider", oauthController.HandleBegin)
	app.Get("/auth/:provider/callback", oauthController.HandleCallback)
}

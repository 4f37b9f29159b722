package oauth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/bewear-pt/storefront/internal/pkg/env"
	"github.com/bewear-pt/storefront/internal/pkg/session"
)

// Providers lists the external sign-in providers the login page offers.
var Providers = []string{"google"}

// CallbackURL returns the absolute callback for a provider.
func CallbackURL(provider string) string {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	if base == "" {
		base = "http://localhost:" + env.GetEnv("APP_PORT", "4000")
	}
	return base + "/auth/" + provider + "/callback"
}

// Setup registers Google sign-in and reports whether it is enabled. goth
// keeps its state in its own Redis database so it never clashes with the
// customer session.
func Setup() bool {
	key := env.GetEnv("GOOGLE_KEY", "")
	if key == "" {
		log.Warn("[OAuth] GOOGLE_KEY not set, Google sign-in disabled")
		return false
	}

	goth.UseProviders(
		google.New(key, env.GetEnv("GOOGLE_SECRET", ""), CallbackURL("google"), "email", "profile"),
	)

	gothfiber.SessionStore = fibersession.New(fibersession.Config{
		Storage:        session.RedisStorage(session.OAuthDB),
		KeyLookup:      "cookie:" + gothic.SessionName,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
		CookieSecure:   !env.IsDev(),
		Expiration:     time.Hour,
	})
	log.Info("[OAuth] Google sign-in enabled")
	return true
}

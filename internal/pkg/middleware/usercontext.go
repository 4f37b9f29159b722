package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/bewear-pt/storefront/internal/pkg/session"
	"github.com/bewear-pt/storefront/internal/pkg/usercontext"
)

// UserContextMiddleware loads the signed-in customer from the session into Locals.
func UserContextMiddleware(c *fiber.Ctx) error {
	// goth keeps its own session on /auth/*; touching ours there breaks the OAuth state.
	if strings.HasPrefix(c.Path(), "/auth/") {
		usercontext.Set(c, usercontext.Anonymous())
		return c.Next()
	}

	userID, name, ok, err := session.Customer(c)
	if err != nil {
		log.Warnf("[UserContext] Failed to load session: %v", err)
	}
	if !ok {
		usercontext.Set(c, usercontext.Anonymous())
		return c.Next()
	}

	usercontext.Set(c, usercontext.UserContext{UserID: userID, Username: name, IsLoggedIn: true})
	return c.Next()
}

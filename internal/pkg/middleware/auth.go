package middleware

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/bewear-pt/storefront/internal/pkg/usercontext"
)

// LoginPath is where anonymous customers are sent; next= brings them back.
const LoginPath = "/login"

// LoginRedirect builds the login URL that returns to target afterwards.
func LoginRedirect(target string) string {
	return LoginPath + "?next=" + url.QueryEscape(target)
}

// RequireAuth guards the cart, address and order pages.
func RequireAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Redirect(LoginRedirect(c.OriginalURL()), fiber.StatusSeeOther)
	}
	return c.Next()
}

// RequireAPISessionAuth answers 401 with the API error body instead of redirecting.
func RequireAPISessionAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "É necessário iniciar sessão",
		})
	}
	return c.Next()
}

package viewmodel

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/bewear-pt/storefront/internal/pkg/usercontext"
)

// Layout carries what layouts/main needs on every page.
type Layout struct {
	Page       string
	Title      string
	IsLoggedIn bool
	Username   string
	CSRF       string
	Msg        fiber.Map
}

// NewLayout collects the layout data of the current request.
func NewLayout(c *fiber.Ctx, page, title string) Layout {
	uc := usercontext.GetUserContext(c)
	csrfToken, _ := c.Locals("csrf").(string)
	return Layout{
		Page:       page,
		Title:      title,
		IsLoggedIn: uc.IsLoggedIn,
		Username:   uc.FirstName(),
		CSRF:       csrfToken,
		Msg:        flash.Get(c),
	}
}

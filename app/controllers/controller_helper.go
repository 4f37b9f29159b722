package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/bewear-pt/storefront/internal/pkg/middleware"
	"github.com/bewear-pt/storefront/internal/pkg/viewmodel"
)

const layoutMain = "layouts/main"

// render adds the layout data and renders view inside layouts/main.
func render(c *fiber.Ctx, view, title string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["Layout"] = viewmodel.NewLayout(c, view, title)
	return c.Render(view, data, layoutMain)
}

func toastError(c *fiber.Ctx, message, to string) error {
	return flash.WithError(c, fiber.Map{"type": "error", "message": message}).Redirect(to)
}

func toastSuccess(c *fiber.Ctx, message, to string) error {
	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": message}).Redirect(to)
}

// redirectToLogin sends anonymous users to the login page and back afterwards.
func redirectToLogin(c *fiber.Ctx) error {
	return c.Redirect(middleware.LoginRedirect(c.OriginalURL()), fiber.StatusSeeOther)
}

// safeNext only allows local paths as login targets.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}

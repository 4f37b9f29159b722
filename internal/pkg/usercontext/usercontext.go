// Package usercontext carries the signed-in customer of a request in fiber Locals.
package usercontext

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const localsKey = "storefront.customer"

// UserContext is the customer behind a request. The zero value is an
// anonymous visitor.
type UserContext struct {
	UserID     uint
	Username   string
	IsLoggedIn bool
}

// Anonymous returns the context of a visitor without a session.
func Anonymous() UserContext {
	return UserContext{}
}

// FirstName is what the layout greets the customer with.
func (uc UserContext) FirstName() string {
	if fields := strings.Fields(uc.Username); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

func Set(c *fiber.Ctx, uc UserContext) {
	c.Locals(localsKey, uc)
}

// GetUserContext returns the context stored by Set, or Anonymous.
func GetUserContext(c *fiber.Ctx) UserContext {
	if uc, ok := c.Locals(localsKey).(UserContext); ok {
		return uc
	}
	return Anonymous()
}

func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// GetUserID returns the customer id, 0 for anonymous visitors.
func GetUserID(c *fiber.Ctx) uint {
	return GetUserContext(c).UserID
}

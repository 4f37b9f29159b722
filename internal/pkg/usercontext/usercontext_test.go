package usercontext

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstName(t *testing.T) {
	assert.Equal(t, "Maria", UserContext{Username: "Maria da Silva"}.FirstName())
	assert.Equal(t, "", Anonymous().FirstName())
}

func TestSetAndGet(t *testing.T) {
	app := fiber.New()
	app.Get("/anon", func(c *fiber.Ctx) error {
		assert.False(t, IsLoggedIn(c))
		assert.Zero(t, GetUserID(c))
		return nil
	})
	app.Get("/me", func(c *fiber.Ctx) error {
		Set(c, UserContext{UserID: 42, Username: "Maria", IsLoggedIn: true})
		assert.True(t, IsLoggedIn(c))
		assert.Equal(t, uint(42), GetUserID(c))
		return nil
	})

	for _, path := range []string{"/anon", "/me"} {
		_, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
		require.NoError(t, err)
	}
}

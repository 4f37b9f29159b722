package controllers

import (
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bewear-pt/storefront/app/repository"
	"github.com/bewear-pt/storefront/internal/pkg/session"
)

func newAuthApp(t *testing.T, users repository.UserRepository) *fiber.App {
	t.Helper()
	previous := session.GetSessionStore()
	session.SetSessionStore(fibersession.New())
	t.Cleanup(func() { session.SetSessionStore(previous) })

	app := newTestApp(0)
	ac := NewAuthController(users, nil).WithProviders("google")
	app.Get("/login", ac.HandleLoginPage)
	app.Post("/login", ac.HandleLogin)
	app.Get("/register", ac.HandleRegisterPage)
	app.Post("/register", ac.HandleRegister)
	return app
}

func TestRegisterThenLogin(t *testing.T) {
	users := repository.NewUserRepository(newTestDB(t))
	app := newAuthApp(t, users)

	resp := postForm(t, app, "/register", url.Values{
		"name":     {"Maria Silva"},
		"email":    {" Maria@Example.pt "},
		"password": {"segredo123"},
	})
	assert.Equal(t, "/login", resp.Header.Get(fiber.HeaderLocation))

	stored, err := users.GetByEmail("maria@example.pt")
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", stored.Name)

	resp = postForm(t, app, "/login", url.Values{
		"email":    {"maria@example.pt"},
		"password": {"segredo123"},
		"next":     {"/cart"},
	})
	assert.Equal(t, "/cart", resp.Header.Get(fiber.HeaderLocation))

	var sessionCookie bool
	for _, c := range resp.Cookies() {
		if c.Name == "session_id" && c.Value != "" {
			sessionCookie = true
		}
	}
	assert.True(t, sessionCookie, "login must set the session cookie")
}

func TestLogin_WrongPassword(t *testing.T) {
	users := repository.NewUserRepository(newTestDB(t))
	app := newAuthApp(t, users)
	postForm(t, app, "/register", url.Values{
		"name":     {"Maria Silva"},
		"email":    {"maria@example.pt"},
		"password": {"segredo123"},
	})

	resp := postForm(t, app, "/login", url.Values{
		"email":    {"maria@example.pt"},
		"password": {"errada!!"},
		"next":     {"//evil.example"},
	})
	assert.Equal(t, "/login?next=%2F", resp.Header.Get(fiber.HeaderLocation))
}

func TestRegister_ShortPassword(t *testing.T) {
	users := repository.NewUserRepository(newTestDB(t))
	app := newAuthApp(t, users)

	resp := postForm(t, app, "/register", url.Values{
		"name":     {"Maria"},
		"email":    {"maria@example.pt"},
		"password": {"curta"},
	})
	assert.Equal(t, "/register", resp.Header.Get(fiber.HeaderLocation))

	_, err := users.GetByEmail("maria@example.pt")
	assert.Error(t, err)
}

func TestLoginPage_Renders(t *testing.T) {
	app := newAuthApp(t, repository.NewUserRepository(newTestDB(t)))

	resp := get(t, app, "/login?next=/my-orders")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.True(t, strings.Contains(body, `name="next" value="/my-orders"`))
	assert.Contains(t, body, `href="/auth/google"`)
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/", safeNext(""))
	assert.Equal(t, "/", safeNext("https://evil.example"))
	assert.Equal(t, "/", safeNext("//evil.example"))
	assert.Equal(t, "/cart", safeNext("/cart"))
}

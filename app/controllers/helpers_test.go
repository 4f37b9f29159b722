package controllers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bewear-pt/storefront/app/models"
	"github.com/bewear-pt/storefront/app/repository"
	"github.com/bewear-pt/storefront/internal/pkg/usercontext"
	"github.com/bewear-pt/storefront/internal/pkg/viewmodel"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// newTestApp returns an app rendering the real views with userID signed in.
// userID 0 leaves the request anonymous.
func newTestApp(userID uint) *fiber.App {
	app := fiber.New(fiber.Config{Views: viewmodel.NewEngine("../../views")})
	app.Use(func(c *fiber.Ctx) error {
		usercontext.Set(c, usercontext.UserContext{UserID: userID, Username: "Maria", IsLoggedIn: userID != 0})
		return c.Next()
	})
	return app
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func validAddressForm() url.Values {
	return url.Values{
		"email":        {"Maria@Example.pt"},
		"fullName":     {"Maria Silva"},
		"nif":          {"123456789"},
		"phone":        {"912345678"},
		"zipCode":      {"1100-053"},
		"address":      {"Rua Augusta"},
		"number":       {"10"},
		"complement":   {"2º Esq"},
		"neighborhood": {"Baixa"},
		"city":         {"Lisboa"},
		"state":        {"Lisboa"},
	}
}

func seedAddress(t *testing.T, repos *repository.Repositories, userID uint) *models.ShippingAddress {
	t.Helper()
	a := &models.ShippingAddress{
		RecipientName: "Maria Silva",
		Street:        "Rua Augusta",
		Number:        "10",
		Neighborhood:  "Baixa",
		City:          "Lisboa",
		State:         "Lisboa",
		ZipCode:       "1100-053",
		Phone:         "912345678",
		Email:         "maria@example.pt",
		TaxID:         "123456789",
	}
	require.NoError(t, repos.ShippingAddress.Create(userID, a))
	return a
}

func seedVariant(t *testing.T, db *gorm.DB) *models.ProductVariant {
	t.Helper()
	category := &models.Category{Name: "Camisolas", Slug: "camisolas"}
	require.NoError(t, db.Create(category).Error)
	product := &models.Product{CategoryID: category.ID, Name: "Camisola Básica", Slug: "camisola-basica"}
	require.NoError(t, db.Create(product).Error)
	variant := &models.ProductVariant{ProductID: product.ID, Name: "Azul", Slug: "camisola-basica-azul", PriceInCents: 1990}
	require.NoError(t, db.Create(variant).Error)
	return variant
}

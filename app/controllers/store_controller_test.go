package controllers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bewear-pt/storefront/app/repository"
)

func newStoreApp(catalog repository.CatalogRepository) *fiber.App {
	app := newTestApp(0)
	sc := NewStoreController(catalog, nil, false)
	app.Get("/", sc.HandleHome)
	app.Get("/category/:slug", sc.HandleCategory)
	app.Get("/product-variant/:slug", sc.HandleVariant)
	return app
}

func TestStorePages(t *testing.T) {
	db := newTestDB(t)
	variant := seedVariant(t, db)
	app := newStoreApp(repository.NewCatalogRepository(db))

	resp := get(t, app, "/")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Camisola Básica")
	assert.Contains(t, body, "/product-variant/"+variant.Slug)

	resp = get(t, app, "/category/camisolas")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "19,90")

	resp = get(t, app, "/product-variant/"+variant.Slug)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = readBody(t, resp)
	assert.Contains(t, body, "Camisola Básica - Azul")
	assert.Contains(t, body, `value="`+variant.ID+`"`)
}

func TestStorePages_NotFound(t *testing.T) {
	app := newStoreApp(repository.NewCatalogRepository(newTestDB(t)))

	assert.Equal(t, fiber.StatusNotFound, get(t, app, "/category/nope").StatusCode)
	assert.Equal(t, fiber.StatusNotFound, get(t, app, "/product-variant/nope").StatusCode)
}

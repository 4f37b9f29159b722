package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bewear-pt/storefront/app/models"
)

func TestCatalogRepository_UpsertIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewCatalogRepository(db)

	v := seedVariant(t, db, "azul", 1990)
	again := seedVariant(t, db, "azul", 2490)
	assert.Equal(t, v.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&models.ProductVariant{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	got, err := repo.GetVariantBySlug("azul")
	require.NoError(t, err)
	assert.EqualValues(t, 2490, got.PriceInCents)
	require.NotNil(t, got.Product)
	assert.Equal(t, "Camisola azul - Azul", got.DisplayName())
	assert.Len(t, got.Product.Variants, 1)
}

func TestCatalogRepository_Lookups(t *testing.T) {
	db := newTestDB(t)
	repo := NewCatalogRepository(db)
	seedVariant(t, db, "azul", 1990)

	cats, err := repo.ListCategories()
	require.NoError(t, err)
	assert.Len(t, cats, 1)

	cat, err := repo.GetCategoryBySlug("camisolas-azul")
	require.NoError(t, err)
	require.Len(t, cat.Products, 1)
	assert.Len(t, cat.Products[0].Variants, 1)

	_, err = repo.GetCategoryBySlug("missing")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	_, err = repo.GetVariantBySlug("missing")
	assert.ErrorIs(t, err, ErrVariantNotFound)

	products, err := repo.ListNewestProducts(0)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bewear-pt/storefront/app/models"
	"github.com/bewear-pt/storefront/app/repository"
)

const sampleSeed = `
categories:
  - name: Camisolas
    products:
      - name: Camisola Básica
        description: Algodão orgânico.
        variants:
          - name: Azul
            color: azul
            price: "19,90"
          - name: Verde
            price: "21.50"
  - name: Calças
    slug: calcas
    products:
      - name: Calça Jeans
        variants:
          - price: "45"
`

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

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Camisola Básica":       "camisola-basica",
		"  Calças & Saias  ":    "calcas-saias",
		"T-shirt 100% algodão!": "t-shirt-100-algodao",
		"":                      "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestParse(t *testing.T) {
	categories, err := Parse(strings.NewReader(sampleSeed))
	require.NoError(t, err)
	require.Len(t, categories, 2)

	shirts := categories[0]
	assert.Equal(t, "camisolas", shirts.Slug)
	require.Len(t, shirts.Products, 1)
	product := shirts.Products[0]
	assert.Equal(t, "camisola-basica", product.Slug)
	require.Len(t, product.Variants, 2)
	assert.Equal(t, "camisola-basica-azul", product.Variants[0].Slug)
	assert.Equal(t, int64(1990), product.Variants[0].PriceInCents)
	assert.Equal(t, int64(2150), product.Variants[1].PriceInCents)

	jeans := categories[1].Products[0].Variants[0]
	assert.Equal(t, "Calça Jeans", jeans.Name)
	assert.Equal(t, "calca-jeans-calca-jeans", jeans.Slug)
	assert.Equal(t, int64(4500), jeans.PriceInCents)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"unknown field": "categories:\n  - name: X\n    colour: red\n",
		"bad price":     "categories:\n  - name: X\n    products:\n      - name: P\n        variants:\n          - price: abc\n",
		"no name":       "categories:\n  - slug: x\n",
	}
	for name, seed := range cases {
		_, err := Parse(strings.NewReader(seed))
		assert.Error(t, err, name)
	}
}

func TestSeed_IsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewCatalogRepository(db)

	for i := 0; i < 2; i++ {
		categories, err := Parse(strings.NewReader(sampleSeed))
		require.NoError(t, err)
		stats, err := Seed(repo, categories)
		require.NoError(t, err)
		assert.Equal(t, Stats{Categories: 2, Products: 2, Variants: 3}, stats)
	}

	var variants int64
	require.NoError(t, db.Model(&models.ProductVariant{}).Count(&variants).Error)
	assert.Equal(t, int64(3), variants)

	variant, err := repo.GetVariantBySlug("camisola-basica-verde")
	require.NoError(t, err)
	assert.Equal(t, "Camisola Básica - Verde", variant.DisplayName())
}

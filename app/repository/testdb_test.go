package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bewear-pt/storefront/app/models"
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

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	u := &models.User{Name: "Cliente", Email: email, Provider: models.AuthProviderLocal}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedAddress(t *testing.T, db *gorm.DB, userID uint) *models.ShippingAddress {
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
	require.NoError(t, NewShippingAddressRepository(db).Create(userID, a))
	return a
}

func seedVariant(t *testing.T, db *gorm.DB, slug string, price int64) *models.ProductVariant {
	t.Helper()
	cat := &models.Category{
		Name: "Camisolas " + slug,
		Slug: "camisolas-" + slug,
		Products: []models.Product{{
			Name: "Camisola " + slug,
			Slug: "camisola-" + slug,
			Variants: []models.ProductVariant{{
				Name:         "Azul",
				Slug:         slug,
				Color:        "azul",
				PriceInCents: price,
			}},
		}},
	}
	require.NoError(t, NewCatalogRepository(db).UpsertCategory(cat))
	v := cat.Products[0].Variants[0]
	return &v
}

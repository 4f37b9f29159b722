package repository

import (
	"errors"

	"github.com/bewear-pt/storefront/app/models"
	"gorm.io/gorm"
)

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository instance
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// ListCategories returns all categories ordered by name
func (r *catalogRepository) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Order("name ASC").Find(&categories).Error
	return categories, err
}

// GetCategoryBySlug loads a category with its products and variants
func (r *catalogRepository) GetCategoryBySlug(slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.Preload("Products.Variants").Where("slug = ?", slug).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// GetVariantBySlug loads a variant with its product and the product's other variants
func (r *catalogRepository) GetVariantBySlug(slug string) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.Preload("Product.Variants").Where("slug = ?", slug).First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, err
	}
	return &variant, nil
}

// ListNewestProducts returns the most recently added products with variants
func (r *catalogRepository) ListNewestProducts(limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 12
	}
	var products []models.Product
	err := r.db.Preload("Variants").Order("created_at DESC").Limit(limit).Find(&products).Error
	return products, err
}

// UpsertCategory creates or updates a category and its nested products and
// variants, matching existing rows by slug.
func (r *catalogRepository) UpsertCategory(category *models.Category) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		products := category.Products
		category.Products = nil
		defer func() { category.Products = products }()

		if err := upsertBySlug(tx, &models.Category{}, category.Slug, category, func(id string) {
			category.ID = id
		}, map[string]interface{}{"name": category.Name}); err != nil {
			return err
		}

		for i := range products {
			p := &products[i]
			p.CategoryID = category.ID
			variants := p.Variants
			p.Variants = nil
			err := upsertBySlug(tx, &models.Product{}, p.Slug, p, func(id string) {
				p.ID = id
			}, map[string]interface{}{
				"name":        p.Name,
				"description": p.Description,
				"category_id": p.CategoryID,
			})
			p.Variants = variants
			if err != nil {
				return err
			}

			for j := range p.Variants {
				v := &p.Variants[j]
				v.ProductID = p.ID
				err := upsertBySlug(tx, &models.ProductVariant{}, v.Slug, v, func(id string) {
					v.ID = id
				}, map[string]interface{}{
					"name":           v.Name,
					"color":          v.Color,
					"price_in_cents": v.PriceInCents,
					"image_url":      v.ImageURL,
					"product_id":     v.ProductID,
				})
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
}

type slugRow struct {
	ID string
}

func upsertBySlug(tx *gorm.DB, model interface{}, slug string, value interface{}, setID func(string), updates map[string]interface{}) error {
	var existing slugRow
	err := tx.Model(model).Select("id").Where("slug = ?", slug).Take(&existing).Error
	switch {
	case err == nil:
		setID(existing.ID)
		return tx.Model(model).Where("id = ?", existing.ID).Updates(updates).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return tx.Create(value).Error
	default:
		return err
	}
}

package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/bewear-pt/storefront/app/models"
	"github.com/bewear-pt/storefront/app/repository"
	"github.com/bewear-pt/storefront/internal/pkg/cache"
	"github.com/bewear-pt/storefront/internal/pkg/metrics/counter"
)

const (
	catalogCacheTTL  = 2 * time.Minute
	homeProductLimit = 12
)

type homeCatalog struct {
	Categories []models.Category `json:"categories"`
	Products   []models.Product  `json:"products"`
}

// StoreController renders the public catalog pages.
type StoreController struct {
	catalog  repository.CatalogRepository
	views    *counter.Counter
	useCache bool
}

// NewStoreController wires the catalog. views may be nil; useCache enables
// the Redis cache for listings.
func NewStoreController(catalog repository.CatalogRepository, views *counter.Counter, useCache bool) *StoreController {
	return &StoreController{catalog: catalog, views: views, useCache: useCache}
}

func remember[T any](enabled bool, key string, load func() (T, error)) (T, error) {
	if !enabled {
		return load()
	}
	return cache.Remember(key, catalogCacheTTL, load)
}

func (sc *StoreController) HandleHome(c *fiber.Ctx) error {
	data, err := remember(sc.useCache, cache.CatalogKey("home"), func() (homeCatalog, error) {
		categories, err := sc.catalog.ListCategories()
		if err != nil {
			return homeCatalog{}, err
		}
		products, err := sc.catalog.ListNewestProducts(homeProductLimit)
		if err != nil {
			return homeCatalog{}, err
		}
		return homeCatalog{Categories: categories, Products: products}, nil
	})
	if err != nil {
		log.Errorf("[Store] Failed to load home catalog: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Erro ao carregar a loja")
	}
	return render(c, "store/home", "Loja", fiber.Map{
		"Categories": data.Categories,
		"Products":   data.Products,
	})
}

func (sc *StoreController) HandleCategory(c *fiber.Ctx) error {
	slug := c.Params("slug")
	category, err := remember(sc.useCache, cache.CatalogKey("category", slug), func() (*models.Category, error) {
		return sc.catalog.GetCategoryBySlug(slug)
	})
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Categoria não encontrada")
		}
		log.Errorf("[Store] Failed to load category %s: %v", slug, err)
		return fiber.NewError(fiber.StatusInternalServerError, "Erro ao carregar a categoria")
	}
	categories, err := remember(sc.useCache, cache.CatalogKey("categories"), sc.catalog.ListCategories)
	if err != nil {
		log.Warnf("[Store] Failed to load categories: %v", err)
	}
	return render(c, "store/category", category.Name, fiber.Map{
		"Category":   category,
		"Categories": categories,
	})
}

func (sc *StoreController) HandleVariant(c *fiber.Ctx) error {
	slug := c.Params("slug")
	variant, err := sc.catalog.GetVariantBySlug(slug)
	if err != nil {
		if errors.Is(err, repository.ErrVariantNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Produto não encontrado")
		}
		log.Errorf("[Store] Failed to load variant %s: %v", slug, err)
		return fiber.NewError(fiber.StatusInternalServerError, "Erro ao carregar o produto")
	}

	if err := sc.views.AddVariantView(c.UserContext(), variant.ID); err != nil {
		log.Debugf("[Store] Failed to count view of %s: %v", variant.ID, err)
	}

	return render(c, "store/variant", variant.DisplayName(), fiber.Map{
		"Variant": variant,
	})
}

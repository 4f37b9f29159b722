package repository

import (
	"time"

	"github.com/bewear-pt/storefront/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByProvider(provider, providerUserID string) (*models.User, error)
	Update(user *models.User) error
	TouchLastLogin(id uint) error
}

// ShippingAddressRepository manages addresses owned by a single user.
// Lookups and mutations of addresses the user does not own return ErrAddressNotFound.
type ShippingAddressRepository interface {
	Create(userID uint, address *models.ShippingAddress) error
	GetByID(userID uint, id string) (*models.ShippingAddress, error)
	ListByUser(userID uint) ([]models.ShippingAddress, error)
	Update(userID uint, address *models.ShippingAddress) error
	Delete(userID uint, id string) error
}

// CatalogRepository defines read access to categories, products and variants
// plus the upsert used by the seeder.
type CatalogRepository interface {
	ListCategories() ([]models.Category, error)
	GetCategoryBySlug(slug string) (*models.Category, error)
	GetVariantBySlug(slug string) (*models.ProductVariant, error)
	ListNewestProducts(limit int) ([]models.Product, error)
	UpsertCategory(category *models.Category) error
}

// CartRepository defines the interface for cart operations of a user
type CartRepository interface {
	GetOrCreate(userID uint) (*models.Cart, error)
	AddItem(userID uint, variantID string, quantity int) error
	DecreaseItem(userID uint, itemID string) error
	RemoveItem(userID uint, itemID string) error
	SetShippingAddress(userID uint, addressID string) error
	AddOrderItems(userID uint, orderID string) error
}

// OrderRepository defines the interface for order operations
type OrderRepository interface {
	CreateFromCart(userID uint) (*models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetOwned(userID uint, id string) (*models.Order, error)
	ListByUser(userID uint) ([]models.Order, error)
	Cancel(userID uint, id string) error
	ClaimNotification(id string, at time.Time) (bool, error)
	ReleaseNotification(id string) error
	ListPaidUnnotified(updatedBefore time.Time, limit int) ([]models.Order, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User            UserRepository
	ShippingAddress ShippingAddressRepository
	Catalog         CatalogRepository
	Cart            CartRepository
	Order           OrderRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:            NewUserRepository(db),
		ShippingAddress: NewShippingAddressRepository(db),
		Catalog:         NewCatalogRepository(db),
		Cart:            NewCartRepository(db),
		Order:           NewOrderRepository(db),
	}
}

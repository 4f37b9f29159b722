package repository

import (
	"errors"

	"github.com/bewear-pt/storefront/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates a new cart repository instance
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func getOrCreateCart(tx *gorm.DB, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := tx.Scopes(OwnedBy(userID)).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	cart = models.Cart{UserID: userID}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&cart).Error; err != nil {
		return nil, err
	}
	// a concurrent request may have created it first
	if err := tx.Scopes(OwnedBy(userID)).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetOrCreate returns the user's cart with items, variants and products loaded
func (r *cartRepository) GetOrCreate(userID uint) (*models.Cart, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	cart, err := getOrCreateCart(r.db, userID)
	if err != nil {
		return nil, err
	}
	var loaded models.Cart
	err = r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.ProductVariant.Product").
		First(&loaded, "id = ?", cart.ID).Error
	if err != nil {
		return nil, err
	}
	return &loaded, nil
}

// AddItem adds quantity units of a variant, merging with an existing line
func (r *cartRepository) AddItem(userID uint, variantID string, quantity int) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	if quantity < 1 {
		quantity = 1
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return addItem(tx, userID, variantID, quantity)
	})
}

func addItem(tx *gorm.DB, userID uint, variantID string, quantity int) error {
	var variants int64
	if err := tx.Model(&models.ProductVariant{}).Where("id = ?", variantID).Count(&variants).Error; err != nil {
		return err
	}
	if variants == 0 {
		return ErrVariantNotFound
	}

	cart, err := getOrCreateCart(tx, userID)
	if err != nil {
		return err
	}

	var item models.CartItem
	err = tx.Where("cart_id = ? AND product_variant_id = ?", cart.ID, variantID).First(&item).Error
	switch {
	case err == nil:
		return tx.Model(&item).Update("quantity", gorm.Expr("quantity + ?", quantity)).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return tx.Create(&models.CartItem{CartID: cart.ID, ProductVariantID: variantID, Quantity: quantity}).Error
	default:
		return err
	}
}

func (r *cartRepository) findOwnedItem(tx *gorm.DB, userID uint, itemID string) (*models.CartItem, error) {
	var item models.CartItem
	err := tx.Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("cart_items.id = ? AND carts.user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// DecreaseItem lowers the quantity by one and removes the line at zero
func (r *cartRepository) DecreaseItem(userID uint, itemID string) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		item, err := r.findOwnedItem(tx, userID, itemID)
		if err != nil {
			return err
		}
		if item.Quantity <= 1 {
			return tx.Delete(&models.CartItem{}, "id = ?", item.ID).Error
		}
		return tx.Model(item).Update("quantity", item.Quantity-1).Error
	})
}

func (r *cartRepository) RemoveItem(userID uint, itemID string) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		item, err := r.findOwnedItem(tx, userID, itemID)
		if err != nil {
			return err
		}
		return tx.Delete(&models.CartItem{}, "id = ?", item.ID).Error
	})
}

// SetShippingAddress selects an address the user owns for the cart.
// A missing or foreign address yields ErrAddressNotFound.
func (r *cartRepository) SetShippingAddress(userID uint, addressID string) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var owned int64
		err := tx.Model(&models.ShippingAddress{}).
			Scopes(OwnedBy(userID)).
			Where("id = ?", addressID).
			Count(&owned).Error
		if err != nil {
			return err
		}
		if owned == 0 {
			return ErrAddressNotFound
		}

		cart, err := getOrCreateCart(tx, userID)
		if err != nil {
			return err
		}
		return tx.Model(&models.Cart{}).Where("id = ?", cart.ID).Update("shipping_address_id", addressID).Error
	})
}

// AddOrderItems re-adds every line of a past order to the cart
func (r *cartRepository) AddOrderItems(userID uint, orderID string) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Scopes(OwnedBy(userID)).Preload("Items").Where("id = ?", orderID).First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		for _, it := range order.Items {
			if err := addItem(tx, userID, it.ProductVariantID, it.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

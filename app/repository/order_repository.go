package repository

import (
	"errors"
	"time"

	"github.com/bewear-pt/storefront/app/models"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository instance
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreateFromCart turns the user's cart into a pending order. The shipping
// address is copied into the order and the cart is emptied, all in one
// transaction.
func (r *orderRepository) CreateFromCart(userID uint) (*models.Order, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}

	var order models.Order
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		err := tx.Scopes(OwnedBy(userID)).Preload("Items.ProductVariant").First(&cart).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartEmpty
			}
			return err
		}
		if len(cart.Items) == 0 {
			return ErrCartEmpty
		}
		if cart.ShippingAddressID == nil {
			return ErrShippingAddressMissing
		}

		var address models.ShippingAddress
		err = tx.Scopes(OwnedBy(userID)).Where("id = ?", *cart.ShippingAddressID).First(&address).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShippingAddressMissing
			}
			return err
		}

		order = models.Order{UserID: userID, Status: models.OrderStatusPending}
		order.ApplyAddress(&address)
		for _, it := range cart.Items {
			if it.ProductVariant == nil {
				return ErrVariantNotFound
			}
			order.Items = append(order.Items, models.OrderItem{
				ProductVariantID: it.ProductVariantID,
				Quantity:         it.Quantity,
				PriceInCents:     it.ProductVariant.PriceInCents,
			})
		}
		order.TotalPriceInCents = cart.TotalInCents()

		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Cart{}, "id = ?", cart.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func preloadOrder(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.ProductVariant.Product")
}

// GetByID loads an order with its items regardless of owner. Used by background jobs.
func (r *orderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	err := r.db.Scopes(preloadOrder).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetOwned(userID uint, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.Scopes(OwnedBy(userID), preloadOrder).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ListByUser returns the user's orders, newest first
func (r *orderRepository) ListByUser(userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Scopes(OwnedBy(userID), preloadOrder).Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// Cancel marks a pending order as canceled. Paid orders are left untouched.
func (r *orderRepository) Cancel(userID uint, id string) error {
	res := r.db.Model(&models.Order{}).
		Scopes(OwnedBy(userID)).
		Where("id = ? AND status = ?", id, models.OrderStatusPending).
		Update("status", models.OrderStatusCanceled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// ClaimNotification stamps notified_at on a paid order that has not been
// notified yet. It reports false when another sender already holds the claim.
func (r *orderRepository) ClaimNotification(id string, at time.Time) (bool, error) {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ? AND notified_at IS NULL", id, models.OrderStatusPaid).
		Update("notified_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}
	var count int64
	if err := r.db.Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, ErrOrderNotFound
	}
	return false, nil
}

// ReleaseNotification clears a claim whose email could not be sent
func (r *orderRepository) ReleaseNotification(id string) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).Update("notified_at", nil).Error
}

// ListPaidUnnotified returns paid orders whose email has not been sent and
// that were last updated before updatedBefore, oldest first.
func (r *orderRepository) ListPaidUnnotified(updatedBefore time.Time, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	var orders []models.Order
	err := r.db.
		Where("status = ? AND notified_at IS NULL AND updated_at < ?", models.OrderStatusPaid, updatedBefore).
		Order("updated_at ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart is the in-progress order of a user. ShippingAddressID is the address
// chosen on the identification step.
type Cart struct {
	ID                string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID            uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	ShippingAddressID *string    `gorm:"type:varchar(36);index" json:"shipping_address_id,omitempty"`
	Items             []CartItem `gorm:"foreignKey:CartID" json:"items,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type CartItem struct {
	ID               string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CartID           string          `gorm:"type:varchar(36);not null;index" json:"cart_id"`
	ProductVariantID string          `gorm:"type:varchar(36);not null;index" json:"product_variant_id"`
	ProductVariant   *ProductVariant `gorm:"foreignKey:ProductVariantID" json:"product_variant,omitempty"`
	Quantity         int             `gorm:"not null;default:1" json:"quantity"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// TotalInCents sums quantity times variant price over the loaded items.
func (c *Cart) TotalInCents() int64 {
	var total int64
	for _, it := range c.Items {
		if it.ProductVariant == nil {
			continue
		}
		total += int64(it.Quantity) * it.ProductVariant.PriceInCents
	}
	return total
}

// ItemCount returns the number of units in the cart.
func (c *Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

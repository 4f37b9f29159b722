package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"type:varchar(150);not null" json:"name"`
	Slug      string    `gorm:"type:varchar(191);uniqueIndex;not null" json:"slug"`
	Products  []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type Product struct {
	ID          string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CategoryID  string           `gorm:"type:varchar(36);not null;index" json:"category_id"`
	Name        string           `gorm:"type:varchar(200);not null" json:"name"`
	Slug        string           `gorm:"type:varchar(191);uniqueIndex;not null" json:"slug"`
	Description string           `gorm:"type:text" json:"description"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// ProductVariant is the purchasable unit (a product in one colour).
type ProductVariant struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProductID    string    `gorm:"type:varchar(36);not null;index" json:"product_id"`
	Product      *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Name         string    `gorm:"type:varchar(200);not null" json:"name"`
	Slug         string    `gorm:"type:varchar(191);uniqueIndex;not null" json:"slug"`
	Color        string    `gorm:"type:varchar(60)" json:"color"`
	PriceInCents int64     `gorm:"not null" json:"price_in_cents"`
	ImageURL     string    `gorm:"type:varchar(500)" json:"image_url"`
	ViewCount    int64     `gorm:"not null;default:0" json:"view_count"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (v *ProductVariant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// DisplayName joins the product and variant names, e.g. "Camisola Básica - Azul".
func (v *ProductVariant) DisplayName() string {
	if v.Product == nil || v.Product.Name == "" {
		return v.Name
	}
	if v.Name == "" || v.Name == v.Product.Name {
		return v.Product.Name
	}
	return v.Product.Name + " - " + v.Name
}

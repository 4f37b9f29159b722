package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OrderStatusPending  = "pending"
	OrderStatusPaid     = "paid"
	OrderStatusCanceled = "canceled"
)

// Order keeps a snapshot of the shipping address taken when the cart was
// finished, so later edits or deletion of the address do not change it.
type Order struct {
	ID                string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID            uint        `gorm:"not null;index" json:"user_id"`
	ShippingAddressID *string     `gorm:"type:varchar(36);index" json:"shipping_address_id,omitempty"`
	RecipientName     string      `gorm:"type:varchar(200)" json:"recipient_name"`
	Street            string      `gorm:"type:varchar(255)" json:"street"`
	Number            string      `gorm:"type:varchar(30)" json:"number"`
	Complement        *string     `gorm:"type:varchar(255)" json:"complement,omitempty"`
	Neighborhood      string      `gorm:"type:varchar(150)" json:"neighborhood"`
	City              string      `gorm:"type:varchar(150)" json:"city"`
	State             string      `gorm:"type:varchar(150)" json:"state"`
	ZipCode           string      `gorm:"type:varchar(8)" json:"zip_code"`
	Country           string      `gorm:"type:varchar(60)" json:"country"`
	Phone             string      `gorm:"type:varchar(9)" json:"phone"`
	Email             string      `gorm:"type:varchar(200)" json:"email"`
	TaxID             string      `gorm:"column:nif;type:varchar(9)" json:"nif"`
	TotalPriceInCents int64       `gorm:"not null" json:"total_price_in_cents"`
	Status            string      `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	NotifiedAt        *time.Time  `gorm:"type:timestamp;default:null" json:"notified_at,omitempty"`
	Items             []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt         time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	return nil
}

// ApplyAddress copies the shipping address fields into the order snapshot.
func (o *Order) ApplyAddress(a *ShippingAddress) {
	id := a.ID
	o.ShippingAddressID = &id
	o.RecipientName = a.RecipientName
	o.Street = a.Street
	o.Number = a.Number
	o.Complement = a.Complement
	o.Neighborhood = a.Neighborhood
	o.City = a.City
	o.State = a.State
	o.ZipCode = a.ZipCode
	o.Country = a.Country
	o.Phone = a.Phone
	o.Email = a.Email
	o.TaxID = a.TaxID
}

// Address returns the snapshot as a ShippingAddress value (without ID/owner).
func (o *Order) Address() ShippingAddress {
	return ShippingAddress{
		RecipientName: o.RecipientName,
		Street:        o.Street,
		Number:        o.Number,
		Complement:    o.Complement,
		Neighborhood:  o.Neighborhood,
		City:          o.City,
		State:         o.State,
		ZipCode:       o.ZipCode,
		Country:       o.Country,
		Phone:         o.Phone,
		Email:         o.Email,
		TaxID:         o.TaxID,
	}
}

func (o *Order) IsPaid() bool {
	return o.Status == OrderStatusPaid
}

type OrderItem struct {
	ID               string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderID          string          `gorm:"type:varchar(36);not null;index" json:"order_id"`
	ProductVariantID string          `gorm:"type:varchar(36);not null;index" json:"product_variant_id"`
	ProductVariant   *ProductVariant `gorm:"foreignKey:ProductVariantID" json:"product_variant,omitempty"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	PriceInCents     int64           `gorm:"not null" json:"price_in_cents"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

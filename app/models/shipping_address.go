package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultCountry is stored on every shipping address; the shop only ships within Portugal.
const DefaultCountry = "Portugal"

// ShippingAddress is a user-owned postal and contact record used to fulfil orders.
// ZipCode is persisted masked as NNNN-NNN, TaxID (NIF) and Phone as digits only.
type ShippingAddress struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	RecipientName string    `gorm:"type:varchar(200);not null" json:"recipient_name"`
	Street        string    `gorm:"type:varchar(255);not null" json:"street"`
	Number        string    `gorm:"type:varchar(30);not null" json:"number"`
	Complement    *string   `gorm:"type:varchar(255)" json:"complement,omitempty"`
	Neighborhood  string    `gorm:"type:varchar(150);not null" json:"neighborhood"`
	City          string    `gorm:"type:varchar(150);not null" json:"city"`
	State         string    `gorm:"type:varchar(150);not null" json:"state"`
	ZipCode       string    `gorm:"type:varchar(8);not null" json:"zip_code"`
	Country       string    `gorm:"type:varchar(60);not null;default:'Portugal'" json:"country"`
	Phone         string    `gorm:"type:varchar(9);not null" json:"phone"`
	Email         string    `gorm:"type:varchar(200);not null" json:"email"`
	TaxID         string    `gorm:"column:nif;type:varchar(9);not null" json:"nif"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *ShippingAddress) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Country == "" {
		a.Country = DefaultCountry
	}
	return nil
}

// ComplementValue returns the complement or an empty string.
func (a *ShippingAddress) ComplementValue() string {
	if a == nil || a.Complement == nil {
		return ""
	}
	return *a.Complement
}

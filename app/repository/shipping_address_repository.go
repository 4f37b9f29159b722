package repository

import (
	"errors"

	"github.com/bewear-pt/storefront/app/models"
	"gorm.io/gorm"
)

type shippingAddressRepository struct {
	db *gorm.DB
}

// NewShippingAddressRepository creates a new shipping address repository instance
func NewShippingAddressRepository(db *gorm.DB) ShippingAddressRepository {
	return &shippingAddressRepository{db: db}
}

// Create inserts the address owned by userID. A zero user is unauthorized.
func (r *shippingAddressRepository) Create(userID uint, address *models.ShippingAddress) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	address.UserID = userID
	address.Country = models.DefaultCountry
	return r.db.Create(address).Error
}

// GetByID retrieves an address by ID if it belongs to userID
func (r *shippingAddressRepository) GetByID(userID uint, id string) (*models.ShippingAddress, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	var address models.ShippingAddress
	err := r.db.Scopes(OwnedBy(userID)).Where("id = ?", id).First(&address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	return &address, nil
}

// ListByUser returns the user's addresses, newest first
func (r *shippingAddressRepository) ListByUser(userID uint) ([]models.ShippingAddress, error) {
	var addresses []models.ShippingAddress
	err := r.db.Scopes(OwnedBy(userID)).Order("created_at DESC").Find(&addresses).Error
	return addresses, err
}

// Update overwrites the editable fields of the row matching both the address ID
// and the owner. No matching row yields ErrAddressNotFound.
func (r *shippingAddressRepository) Update(userID uint, address *models.ShippingAddress) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	if address.ID == "" {
		return ErrAddressNotFound
	}

	res := r.db.Model(&models.ShippingAddress{}).
		Scopes(OwnedBy(userID)).
		Where("id = ?", address.ID).
		Updates(map[string]interface{}{
			"recipient_name": address.RecipientName,
			"street":         address.Street,
			"number":         address.Number,
			"complement":     address.Complement,
			"neighborhood":   address.Neighborhood,
			"city":           address.City,
			"state":          address.State,
			"zip_code":       address.ZipCode,
			"country":        models.DefaultCountry,
			"phone":          address.Phone,
			"email":          address.Email,
			"nif":            address.TaxID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAddressNotFound
	}
	address.UserID = userID
	return nil
}

// Delete removes the row matching both the address ID and the owner and
// clears it from the owner's cart selection.
func (r *shippingAddressRepository) Delete(userID uint, id string) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Scopes(OwnedBy(userID)).Where("id = ?", id).Delete(&models.ShippingAddress{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAddressNotFound
		}
		return tx.Model(&models.Cart{}).
			Scopes(OwnedBy(userID)).
			Where("shipping_address_id = ?", id).
			Update("shipping_address_id", nil).Error
	})
}

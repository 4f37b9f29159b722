package repository

import "errors"

var (
	ErrUnauthorized           = errors.New("unauthorized")
	ErrAddressNotFound        = errors.New("Morada não encontrada")
	ErrCartEmpty              = errors.New("cart is empty")
	ErrCartItemNotFound       = errors.New("cart item not found")
	ErrShippingAddressMissing = errors.New("cart has no shipping address")
	ErrVariantNotFound        = errors.New("product variant not found")
	ErrOrderNotFound          = errors.New("order not found")
	ErrCategoryNotFound       = errors.New("category not found")
	ErrUserExists             = errors.New("user already exists")
)

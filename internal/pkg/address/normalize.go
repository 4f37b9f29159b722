package address

import (
	"strings"
	"unicode"

	"github.com/bewear-pt/storefront/app/models"
)

// Input is the raw shipping-address form submitted by the user.
type Input struct {
	ID           string `form:"id" json:"id"`
	Email        string `form:"email" json:"email" validate:"required,email"`
	FullName     string `form:"fullName" json:"fullName" validate:"required"`
	NIF          string `form:"nif" json:"nif" validate:"required,pt_nif"`
	Phone        string `form:"phone" json:"phone" validate:"required,pt_phone"`
	ZipCode      string `form:"zipCode" json:"zipCode" validate:"required,pt_postal"`
	Address      string `form:"address" json:"address" validate:"required"`
	Number       string `form:"number" json:"number" validate:"required"`
	Complement   string `form:"complement" json:"complement"`
	Neighborhood string `form:"neighborhood" json:"neighborhood" validate:"required"`
	City         string `form:"city" json:"city" validate:"required"`
	State        string `form:"state" json:"state" validate:"required"`
}

// Normalized is the persisted shape of a validated Input.
type Normalized struct {
	RecipientName string
	Street        string
	Number        string
	Complement    *string
	Neighborhood  string
	City          string
	State         string
	ZipCode       string
	Country       string
	Phone         string
	Email         string
	TaxID         string
}

// OnlyDigits drops every non-digit rune.
func OnlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MaskPostalCode formats a Portuguese postal code as NNNN-NNN when it has
// exactly 7 digits. Anything else is returned as its digits.
func MaskPostalCode(s string) string {
	d := OnlyDigits(s)
	if len(d) != 7 {
		return d
	}
	return d[:4] + "-" + d[4:]
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// Normalize trims text fields, strips punctuation from NIF, phone and postal
// code, re-masks the postal code and fixes the country.
func Normalize(in Input) Normalized {
	n := Normalized{
		RecipientName: strings.TrimSpace(in.FullName),
		Street:        strings.TrimSpace(in.Address),
		Number:        strings.TrimSpace(in.Number),
		Neighborhood:  strings.TrimSpace(in.Neighborhood),
		City:          strings.TrimSpace(in.City),
		State:         strings.TrimSpace(in.State),
		ZipCode:       MaskPostalCode(in.ZipCode),
		Country:       models.DefaultCountry,
		Phone:         OnlyDigits(in.Phone),
		Email:         strings.TrimSpace(in.Email),
		TaxID:         OnlyDigits(in.NIF),
	}
	if c := strings.TrimSpace(in.Complement); c != "" {
		n.Complement = &c
	}
	return n
}

// Apply copies the normalized values onto a model, leaving ID and owner untouched.
func (n Normalized) Apply(a *models.ShippingAddress) {
	a.RecipientName = n.RecipientName
	a.Street = n.Street
	a.Number = n.Number
	a.Complement = n.Complement
	a.Neighborhood = n.Neighborhood
	a.City = n.City
	a.State = n.State
	a.ZipCode = n.ZipCode
	a.Country = n.Country
	a.Phone = n.Phone
	a.Email = n.Email
	a.TaxID = n.TaxID
}

// FromModel builds a form Input pre-filled with a stored address.
func FromModel(a *models.ShippingAddress) Input {
	return Input{
		ID:           a.ID,
		Email:        a.Email,
		FullName:     a.RecipientName,
		NIF:          a.TaxID,
		Phone:        a.Phone,
		ZipCode:      a.ZipCode,
		Address:      a.Street,
		Number:       a.Number,
		Complement:   a.ComplementValue(),
		Neighborhood: a.Neighborhood,
		City:         a.City,
		State:        a.State,
	}
}

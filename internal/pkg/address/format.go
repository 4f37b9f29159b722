package address

import (
	"strings"

	"github.com/bewear-pt/storefront/app/models"
)

// Format renders an address as the multi-line block shown in the cart and in
// notification emails:
//
//	Maria Silva
//	Rua Augusta, 10, Baixa
//	Lisboa, Lisboa
//	1100-053
func Format(a models.ShippingAddress) string {
	var lines []string
	if a.RecipientName != "" {
		lines = append(lines, a.RecipientName)
	}

	street := a.Street
	if a.Number != "" {
		street += ", " + a.Number
	}
	if c := a.ComplementValue(); c != "" {
		street += " " + c
	}
	if a.Neighborhood != "" {
		street += ", " + a.Neighborhood
	}
	lines = append(lines, street)
	lines = append(lines, a.City+", "+a.State)
	lines = append(lines, a.ZipCode)

	return strings.Join(lines, "\n")
}

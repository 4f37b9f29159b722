package viewmodel

import (
	"github.com/bewear-pt/storefront/app/models"
	"github.com/bewear-pt/storefront/internal/pkg/money"
)

// CartLine is one formatted row of the cart table.
type CartLine struct {
	ItemID    string
	Name      string
	ImageURL  string
	Quantity  int
	UnitPrice string
	LineTotal string
}

// Cart is the cart as shown on the cart and identification pages.
type Cart struct {
	Lines             []CartLine
	ItemCount         int
	Total             string
	TotalInCents      int64
	ShippingAddressID string
	ShippingAddress   *models.ShippingAddress
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// NewCart formats a loaded cart. selected is the chosen shipping address, if any.
func NewCart(cart *models.Cart, selected *models.ShippingAddress) Cart {
	view := Cart{
		ItemCount:       cart.ItemCount(),
		TotalInCents:    cart.TotalInCents(),
		ShippingAddress: selected,
	}
	view.Total = money.FormatEUR(view.TotalInCents)
	if cart.ShippingAddressID != nil {
		view.ShippingAddressID = *cart.ShippingAddressID
	}
	for _, it := range cart.Items {
		line := CartLine{ItemID: it.ID, Quantity: it.Quantity, Name: it.ProductVariantID}
		if v := it.ProductVariant; v != nil {
			line.Name = v.DisplayName()
			line.ImageURL = v.ImageURL
			line.UnitPrice = money.FormatEUR(v.PriceInCents)
			line.LineTotal = money.FormatEUR(money.LineTotal(v.PriceInCents, it.Quantity))
		}
		view.Lines = append(view.Lines, line)
	}
	return view
}

package notification

import (
	"fmt"
	"strings"

	"github.com/bewear-pt/storefront/app/models"
	"github.com/bewear-pt/storefront/internal/pkg/address"
	"github.com/bewear-pt/storefront/internal/pkg/money"
	"github.com/bewear-pt/storefront/views/email"
)

// Subject returns the subject line of the paid-order email.
func Subject(order *models.Order) string {
	return fmt.Sprintf("Encomenda %s paga", order.ID)
}

// FormatOrderSummary renders the plain-text summary sent to the shop owner.
func FormatOrderSummary(order *models.Order) string {
	var b strings.Builder

	b.WriteString(Subject(order) + "\n\n")

	b.WriteString("Cliente\n")
	fmt.Fprintf(&b, "Nome: %s\n", order.RecipientName)
	fmt.Fprintf(&b, "E-mail: %s\n", order.Email)
	fmt.Fprintf(&b, "Telemóvel: %s\n", order.Phone)
	fmt.Fprintf(&b, "NIF: %s\n\n", order.TaxID)

	b.WriteString("Morada de entrega\n")
	b.WriteString(address.Format(order.Address()) + "\n")
	if order.Country != "" {
		b.WriteString(order.Country + "\n")
	}
	b.WriteString("\n")

	b.WriteString("Artigos\n")
	for _, it := range order.Items {
		fmt.Fprintf(&b, "- %d x %s (%s) = %s\n",
			it.Quantity,
			itemName(it),
			money.FormatEUR(it.PriceInCents),
			money.FormatEUR(money.LineTotal(it.PriceInCents, it.Quantity)),
		)
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", money.FormatEUR(order.TotalPriceInCents))

	return b.String()
}

// EmailData maps an order to the values shown by the HTML email.
func EmailData(order *models.Order, ordersURL string) email.OrderPaidData {
	data := email.OrderPaidData{
		OrderID:      order.ID,
		CustomerName: order.RecipientName,
		Email:        order.Email,
		Phone:        order.Phone,
		TaxID:        order.TaxID,
		AddressLines: strings.Split(address.Format(order.Address()), "\n"),
		Total:        money.FormatEUR(order.TotalPriceInCents),
		OrdersURL:    ordersURL,
	}
	if order.Country != "" {
		data.AddressLines = append(data.AddressLines, order.Country)
	}
	for _, it := range order.Items {
		data.Items = append(data.Items, email.OrderPaidItem{
			Name:      itemName(it),
			Quantity:  it.Quantity,
			UnitPrice: money.FormatEUR(it.PriceInCents),
			LineTotal: money.FormatEUR(money.LineTotal(it.PriceInCents, it.Quantity)),
		})
	}
	return data
}

func itemName(it models.OrderItem) string {
	if it.ProductVariant == nil {
		return it.ProductVariantID
	}
	return it.ProductVariant.DisplayName()
}

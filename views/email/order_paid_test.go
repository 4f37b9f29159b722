package email

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, d OrderPaidData) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, OrderPaid(d).Render(context.Background(), &buf))
	return buf.String()
}

func TestOrderPaid_RendersOrder(t *testing.T) {
	html := render(t, OrderPaidData{
		OrderID:      "ord-1",
		CustomerName: "Maria Silva",
		Email:        "Maria@Example.pt",
		Phone:        "+351912345678",
		TaxID:        "123456789",
		AddressLines: []string{"Rua Augusta 10", "1100-053 Lisboa"},
		Items: []OrderPaidItem{
			{Name: "Camisola", Quantity: 2, UnitPrice: "19,90 €", LineTotal: "39,80 €"},
		},
		Total:     "39,80 €",
		OrdersURL: "https://loja.example.pt/my-orders",
	})

	assert.Contains(t, html, "Encomenda <span>ord-1</span> paga")
	assert.Contains(t, html, "E-mail: Maria@Example.pt")
	assert.Contains(t, html, "Rua Augusta 10<br>1100-053 Lisboa")
	assert.Contains(t, html, `<td align="right">2</td>`)
	assert.Contains(t, html, "Total: 39,80 €")
	assert.Contains(t, html, `href="https://loja.example.pt/my-orders"`)
}

func TestOrderPaid_EscapesValues(t *testing.T) {
	html := render(t, OrderPaidData{
		OrderID:      "ord-2",
		CustomerName: `<script>alert("x")</script>`,
		AddressLines: []string{"<b>Rua</b>"},
		Items:        []OrderPaidItem{{Name: "T&C", Quantity: 1}},
	})

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "&lt;b&gt;Rua&lt;/b&gt;")
	assert.Contains(t, html, "T&amp;C")
}

func TestOrderPaid_OmitsLinkWithoutURL(t *testing.T) {
	html := render(t, OrderPaidData{OrderID: "ord-3"})
	assert.NotContains(t, html, "Ver as minhas encomendas")
}

func TestOrderPaid_SanitizesUnsafeURL(t *testing.T) {
	html := render(t, OrderPaidData{OrderID: "ord-4", OrdersURL: "javascript:alert(1)"})
	assert.NotContains(t, html, "javascript:")
}

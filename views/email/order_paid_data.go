package email

// OrderPaidItem is one rendered line of the order table.
type OrderPaidItem struct {
	Name      string
	Quantity  int
	UnitPrice string
	LineTotal string
}

// OrderPaidData carries pre-formatted values for the paid-order email.
type OrderPaidData struct {
	OrderID      string
	CustomerName string
	Email        string
	Phone        string
	TaxID        string
	AddressLines []string
	Items        []OrderPaidItem
	Total        string
	OrdersURL    string
}

package constants

// Route constants shared by the router, controllers and templates
const (
	PublicRoute        = "/"
	LoginRoute         = "/login"
	CartRoute          = "/cart"
	IdentificationPage = "/cart/identification"
	MyOrdersRoute      = "/my-orders"
	StripeWebhookRoute = "/api/stripe/webhook"
	CheckoutSuccess    = "/checkout/success"
	AddressesRoute     = "/addresses"
)

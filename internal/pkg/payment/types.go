package payment

import "errors"

// EventCheckoutSessionCompleted is the only Stripe event type that changes order state.
const EventCheckoutSessionCompleted = "checkout.session.completed"

// MetadataOrderID is the checkout session metadata key carrying the local order ID.
const MetadataOrderID = "orderId"

var (
	ErrNotConfigured    = errors.New("stripe webhook is not configured")
	ErrMissingSignature = errors.New("missing stripe signature")
	ErrInvalidSignature = errors.New("invalid stripe signature")
	ErrMissingOrderID   = errors.New("checkout session has no orderId metadata")
	ErrOrderNotFound    = errors.New("order not found")
)

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

// Outcome describes what handling a webhook event did.
type Outcome string

const (
	OutcomePaid         Outcome = "paid"
	OutcomeAlreadyPaid  Outcome = "already_paid"
	OutcomeDuplicate    Outcome = "duplicate"
	OutcomeIgnoredType  Outcome = "ignored_type"
	OutcomeUnknownOrder Outcome = "unknown_order"
)

type Result struct {
	Outcome Outcome
	EventID string
	OrderID string
}

// OrderPaidMessage is published once an order transitions to paid.
type OrderPaidMessage struct {
	OrderID string `json:"order_id"`
	EventID string `json:"event_id"`
}

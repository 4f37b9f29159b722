package payment

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// VerifyEvent checks the Stripe-Signature header against the raw payload and
// returns the parsed event. Any failure wraps ErrInvalidSignature.
func VerifyEvent(payload []byte, signatureHeader, webhookSecret string) (stripe.Event, error) {
	if strings.TrimSpace(webhookSecret) == "" {
		return stripe.Event{}, ErrNotConfigured
	}
	if strings.TrimSpace(signatureHeader) == "" {
		return stripe.Event{}, ErrMissingSignature
	}

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return event, nil
}

// OrderIDFromEvent reads metadata.orderId from a checkout session event.
func OrderIDFromEvent(event stripe.Event) (string, error) {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return "", ErrMissingOrderID
	}
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return "", fmt.Errorf("decode checkout session: %w", err)
	}
	orderID := strings.TrimSpace(session.Metadata[MetadataOrderID])
	if orderID == "" {
		return "", ErrMissingOrderID
	}
	return orderID, nil
}

package payment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/stripe/stripe-go/v76"
	"gorm.io/gorm"

	"github.com/bewear-pt/storefront/app/models"
)

// Service records Stripe webhook events and applies them to orders.
type Service struct {
	repo Repository
}

// NewService creates a payment service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a payment service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// RecordWebhookEvent persists webhook payloads idempotently.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.PaymentWebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.PaymentWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

// HandleEvent applies a verified Stripe event. Events already processed
// without error are reported as duplicates and have no side effects; events
// whose earlier processing failed are processed again.
//
// ErrMissingOrderID is returned for a completed checkout without an order
// reference. Any other error means the event should be retried.
func (s *Service) HandleEvent(ctx context.Context, event stripe.Event, payload []byte) (Result, error) {
	res := Result{EventID: event.ID}

	created, stored, err := s.RecordWebhookEvent(ctx, WebhookEventInput{
		Provider:        models.PaymentProviderStripe,
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		PayloadJSON:     string(payload),
		SignatureValid:  true,
	})
	if err != nil {
		return res, fmt.Errorf("record webhook event: %w", err)
	}
	if !created && stored.Handled() {
		res.Outcome = OutcomeDuplicate
		return res, nil
	}

	if string(event.Type) != EventCheckoutSessionCompleted {
		if err := s.MarkWebhookProcessed(ctx, stored.ID, nil); err != nil {
			return res, err
		}
		res.Outcome = OutcomeIgnoredType
		return res, nil
	}

	orderID, err := OrderIDFromEvent(event)
	if err != nil {
		if markErr := s.MarkWebhookProcessed(ctx, stored.ID, err); markErr != nil {
			log.Errorf("[Payment] failed to mark event %s: %v", event.ID, markErr)
		}
		return res, ErrMissingOrderID
	}
	res.OrderID = orderID

	changed, err := s.repo.MarkOrderPaid(stored.ID, orderID)
	if errors.Is(err, ErrOrderNotFound) {
		log.Warnf("[Payment] event %s references unknown order %s", event.ID, orderID)
		if markErr := s.MarkWebhookProcessed(ctx, stored.ID, err); markErr != nil {
			return res, markErr
		}
		res.Outcome = OutcomeUnknownOrder
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("mark order %s paid: %w", orderID, err)
	}

	if changed {
		log.Infof("[Payment] order %s marked as paid (event %s)", orderID, event.ID)
		res.Outcome = OutcomePaid
	} else {
		res.Outcome = OutcomeAlreadyPaid
	}
	return res, nil
}

// PaidMessage builds the JSON body published for a paid order.
func PaidMessage(res Result) ([]byte, error) {
	return json.Marshal(OrderPaidMessage{OrderID: res.OrderID, EventID: res.EventID})
}

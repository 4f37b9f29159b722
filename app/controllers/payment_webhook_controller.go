package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/bewear-pt/storefront/internal/pkg/events"
	"github.com/bewear-pt/storefront/internal/pkg/payment"
)

const publishTimeout = 5 * time.Second

// OrderPaidNotifier schedules the paid-order email.
type OrderPaidNotifier interface {
	NotifyOrderPaid(ctx context.Context, orderID, eventID string) error
}

// PaymentWebhookController receives Stripe events.
type PaymentWebhookController struct {
	service       *payment.Service
	notifier      OrderPaidNotifier
	publisher     events.Publisher
	secretKey     string
	webhookSecret string
}

// NewPaymentWebhookController wires the webhook. notifier and publisher may be nil.
func NewPaymentWebhookController(service *payment.Service, notifier OrderPaidNotifier, publisher events.Publisher, secretKey, webhookSecret string) *PaymentWebhookController {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &PaymentWebhookController{
		service:       service,
		notifier:      notifier,
		publisher:     publisher,
		secretKey:     strings.TrimSpace(secretKey),
		webhookSecret: strings.TrimSpace(webhookSecret),
	}
}

// HandleStripeWebhook verifies the signature, records the event and marks
// the referenced order as paid. Redeliveries of a handled event are
// acknowledged without side effects.
func (pc *PaymentWebhookController) HandleStripeWebhook(c *fiber.Ctx) error {
	if pc.secretKey == "" || pc.webhookSecret == "" {
		log.Error("[StripeWebhook] STRIPE_SECRET_KEY or STRIPE_WEBHOOK_SECRET missing")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_not_configured"})
	}

	signature := c.Get("Stripe-Signature")
	if strings.TrimSpace(signature) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing_signature"})
	}

	// fasthttp reuses the body buffer after the handler returns.
	payload := append([]byte(nil), c.Body()...)

	event, err := payment.VerifyEvent(payload, signature, pc.webhookSecret)
	if err != nil {
		log.Warnf("[StripeWebhook] Rejected event: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_signature",
			"message": err.Error(),
		})
	}

	res, err := pc.service.HandleEvent(c.UserContext(), event, payload)
	if errors.Is(err, payment.ErrMissingOrderID) {
		log.Warnf("[StripeWebhook] Event %s has no orderId metadata", event.ID)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing_order_id"})
	}
	if err != nil {
		log.Errorf("[StripeWebhook] Failed to process event %s: %v", event.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "processing_failed"})
	}

	switch res.Outcome {
	case payment.OutcomeDuplicate:
		return c.JSON(fiber.Map{"received": true, "duplicate": true})
	case payment.OutcomeUnknownOrder:
		return c.JSON(fiber.Map{"received": true, "ignored": true})
	case payment.OutcomePaid:
		pc.afterPaid(res)
	}
	return c.JSON(fiber.Map{"received": true})
}

// afterPaid runs the best-effort follow-ups of a newly paid order. Failures
// are logged and never change the webhook response.
func (pc *PaymentWebhookController) afterPaid(res payment.Result) {
	if pc.notifier != nil {
		if err := pc.notifier.NotifyOrderPaid(context.Background(), res.OrderID, res.EventID); err != nil {
			log.Errorf("[StripeWebhook] Failed to schedule notification for order %s: %v", res.OrderID, err)
		}
	}

	body, err := payment.PaidMessage(res)
	if err != nil {
		log.Errorf("[StripeWebhook] Failed to encode order.paid for %s: %v", res.OrderID, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := pc.publisher.Publish(ctx, res.EventID, events.TopicOrderPaid, body); err != nil {
		log.Errorf("[StripeWebhook] Failed to publish order.paid for %s: %v", res.OrderID, err)
	}
}

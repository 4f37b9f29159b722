package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/gorm"

	"github.com/bewear-pt/storefront/app/models"
	"github.com/bewear-pt/storefront/internal/pkg/constants"
	"github.com/bewear-pt/storefront/internal/pkg/events"
	"github.com/bewear-pt/storefront/internal/pkg/payment"
)

const (
	testStripeKey     = "sk_test_123"
	testWebhookSecret = "whsec_test_secret"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) NotifyOrderPaid(_ context.Context, orderID, eventID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, orderID+"/"+eventID)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, topic string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func (p *recordingPublisher) Close() {}

type webhookFixture struct {
	db        *gorm.DB
	app       *fiber.App
	notifier  *recordingNotifier
	publisher *recordingPublisher
}

func newWebhookFixture(t *testing.T, secretKey, webhookSecret string) *webhookFixture {
	t.Helper()
	f := &webhookFixture{
		db:        newTestDB(t),
		notifier:  &recordingNotifier{},
		publisher: &recordingPublisher{},
	}
	controller := NewPaymentWebhookController(payment.NewServiceFromDB(f.db), f.notifier, f.publisher, secretKey, webhookSecret)
	f.app = fiber.New()
	f.app.Post(constants.StripeWebhookRoute, controller.HandleStripeWebhook)
	return f
}

func (f *webhookFixture) seedPendingOrder(t *testing.T) *models.Order {
	t.Helper()
	order := &models.Order{UserID: 1, Email: "maria@example.pt", TotalPriceInCents: 1990}
	require.NoError(t, f.db.Create(order).Error)
	return order
}

func (f *webhookFixture) post(t *testing.T, payload []byte, signature string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, constants.StripeWebhookRoute, bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func sign(payload []byte, secret string) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	}).Header
}

func completedCheckout(eventID, orderID string) []byte {
	metadata := `{}`
	if orderID != "" {
		metadata = `{"orderId":"` + orderID + `"}`
	}
	return []byte(`{"id":"` + eventID + `","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_test_1","object":"checkout.session","metadata":` + metadata + `}}}`)
}

func orderStatus(t *testing.T, db *gorm.DB, id string) string {
	t.Helper()
	var order models.Order
	require.NoError(t, db.First(&order, "id = ?", id).Error)
	return order.Status
}

func TestStripeWebhook_MarksOrderPaidAndNotifiesOnce(t *testing.T) {
	f := newWebhookFixture(t, testStripeKey, testWebhookSecret)
	order := f.seedPendingOrder(t)
	payload := completedCheckout("evt_paid", order.ID)

	resp, body := f.post(t, payload, sign(payload, testWebhookSecret))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"received":true}`, body)
	assert.Equal(t, models.OrderStatusPaid, orderStatus(t, f.db, order.ID))
	assert.Equal(t, []string{order.ID + "/evt_paid"}, f.notifier.calls)
	assert.Equal(t, []string{events.TopicOrderPaid}, f.publisher.topics)

	resp, body = f.post(t, payload, sign(payload, testWebhookSecret))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"received":true,"duplicate":true}`, body)
	assert.Len(t, f.notifier.calls, 1)
	assert.Len(t, f.publisher.topics, 1)
}

func TestStripeWebhook_InvalidSignature(t *testing.T) {
	f := newWebhookFixture(t, testStripeKey, testWebhookSecret)
	order := f.seedPendingOrder(t)
	payload := completedCheckout("evt_forged", order.ID)

	resp, body := f.post(t, payload, sign(payload, "whsec_someone_else"))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, `"error":"invalid_signature"`)
	assert.Equal(t, models.OrderStatusPending, orderStatus(t, f.db, order.ID))
	assert.Empty(t, f.notifier.calls)

	var count int64
	require.NoError(t, f.db.Model(&models.PaymentWebhookEvent{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestStripeWebhook_MissingSignature(t *testing.T) {
	f := newWebhookFixture(t, testStripeKey, testWebhookSecret)

	resp, body := f.post(t, completedCheckout("evt_1", "order-1"), "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"missing_signature"}`, body)
}

func TestStripeWebhook_NotConfigured(t *testing.T) {
	f := newWebhookFixture(t, testStripeKey, "")
	payload := completedCheckout("evt_1", "order-1")

	resp, body := f.post(t, payload, sign(payload, testWebhookSecret))
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"webhook_not_configured"}`, body)
}

func TestStripeWebhook_MissingOrderID(t *testing.T) {
	f := newWebhookFixture(t, testStripeKey, testWebhookSecret)
	payload := completedCheckout("evt_no_order", "")

	resp, body := f.post(t, payload, sign(payload, testWebhookSecret))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"missing_order_id"}`, body)

	var stored models.PaymentWebhookEvent
	require.NoError(t, f.db.Where("provider_event_id = ?", "evt_no_order").First(&stored).Error)
	assert.NotEmpty(t, stored.ProcessingError)
}

func TestStripeWebhook_UnknownOrderIgnored(t *testing.T) {
	f := newWebhookFixture(t, testStripeKey, testWebhookSecret)
	payload := completedCheckout("evt_unknown", "does-not-exist")

	resp, body := f.post(t, payload, sign(payload, testWebhookSecret))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"received":true,"ignored":true}`, body)
	assert.Empty(t, f.notifier.calls)
}

func TestStripeWebhook_OtherEventTypesAcknowledged(t *testing.T) {
	f := newWebhookFixture(t, testStripeKey, testWebhookSecret)
	payload := []byte(`{"id":"evt_other","object":"event","type":"payment_intent.created","data":{"object":{"id":"pi_1","object":"payment_intent"}}}`)

	resp, body := f.post(t, payload, sign(payload, testWebhookSecret))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"received":true}`, body)
	assert.Empty(t, f.notifier.calls)
}

package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/bewear-pt/storefront/app/models"
)

// CheckoutCreator starts a hosted payment for a pending order and returns the
// URL the customer is redirected to.
type CheckoutCreator interface {
	CreateCheckoutSession(ctx context.Context, order *models.Order, successURL, cancelURL string) (string, error)
}

type StripeCheckout struct {
	api *client.API
}

func NewStripeCheckout(secretKey string) (*StripeCheckout, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, ErrNotConfigured
	}
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeCheckout{api: sc}, nil
}

// CheckoutParams builds the session parameters for an order. Items must have
// their variants loaded.
func CheckoutParams(order *models.Order, successURL, cancelURL string) (*stripe.CheckoutSessionParams, error) {
	if len(order.Items) == 0 {
		return nil, errors.New("order has no items")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	if order.Email != "" {
		params.CustomerEmail = stripe.String(order.Email)
	}
	params.AddMetadata(MetadataOrderID, order.ID)

	for _, it := range order.Items {
		name := it.ProductVariantID
		var images []*string
		if it.ProductVariant != nil {
			name = it.ProductVariant.DisplayName()
			if strings.HasPrefix(it.ProductVariant.ImageURL, "http") {
				images = append(images, stripe.String(it.ProductVariant.ImageURL))
			}
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyEUR)),
				UnitAmount: stripe.Int64(it.PriceInCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:   stripe.String(name),
					Images: images,
				},
			},
			Quantity: stripe.Int64(int64(it.Quantity)),
		})
	}
	return params, nil
}

func (s *StripeCheckout) CreateCheckoutSession(ctx context.Context, order *models.Order, successURL, cancelURL string) (string, error) {
	params, err := CheckoutParams(order, successURL, cancelURL)
	if err != nil {
		return "", err
	}
	params.Context = ctx

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

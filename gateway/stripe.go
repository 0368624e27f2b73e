package gateway

import (
	"context"
	"encoding/json"
	"math"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"
)

// EventCheckoutCompleted is the only event type the reconciler acts on.
const EventCheckoutCompleted = "checkout.session.completed"

// LineItem is one entry of a checkout cart. Price is in decimal currency
// units; conversion to minor units happens here, at the provider boundary.
type LineItem struct {
	Name     string
	Price    float64
	Image    string
	Quantity int64
}

// WebhookEvent is a verified provider event with the session metadata the
// reconciler correlates on. Provider wire types never leave this package.
type WebhookEvent struct {
	Type     string
	Metadata map[string]string
}

// StripeGateway talks to Stripe for checkout sessions, payment intents
// and webhook signature verification.
type StripeGateway struct {
	webhookSecret string
	currency      string
	breaker       *gobreaker.CircuitBreaker
}

func NewStripeGateway(secretKey, webhookSecret, currency string) *StripeGateway {
	stripe.Key = secretKey

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "stripe",
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(log.Fields{
				"circuit": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Info("circuit breaker state changed")
		},
	})

	return &StripeGateway{
		webhookSecret: webhookSecret,
		currency:      currency,
		breaker:       breaker,
	}
}

// CreateCheckoutSession requests a hosted checkout page and returns its
// opaque session id. Metadata rides along for webhook correlation.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, items []LineItem, successURL, cancelURL string, metadata map[string]string) (string, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, item := range items {
		priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(g.currency),
			UnitAmount: stripe.Int64(toMinorUnits(item.Price)),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(item.Name),
			},
		}
		if item.Image != "" {
			priceData.ProductData.Images = stripe.StringSlice([]string{item.Image})
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: priceData,
			Quantity:  stripe.Int64(item.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(successURL),
		CancelURL:          stripe.String(cancelURL),
	}
	params.Context = ctx
	for key, value := range metadata {
		params.AddMetadata(key, value)
	}

	result, err := g.breaker.Execute(func() (interface{}, error) {
		return session.New(params)
	})
	if err != nil {
		return "", err
	}
	return result.(*stripe.CheckoutSession).ID, nil
}

// CreatePaymentIntent requests an intent for embedded payment flows and
// returns its client secret.
func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountMinor),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	result, err := g.breaker.Execute(func() (interface{}, error) {
		return paymentintent.New(params)
	})
	if err != nil {
		return "", err
	}
	return result.(*stripe.PaymentIntent).ClientSecret, nil
}

// VerifyWebhook checks the signature header against the raw payload.
// This is the sole trust boundary for webhook deliveries; nothing in the
// body is believed before it passes. Local crypto, no breaker.
func (g *StripeGateway) VerifyWebhook(payload []byte, signatureHeader string) (WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
	if err != nil {
		return WebhookEvent{}, err
	}

	verified := WebhookEvent{Type: string(event.Type)}
	if verified.Type == EventCheckoutCompleted {
		var checkoutSession stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &checkoutSession); err != nil {
			return WebhookEvent{}, err
		}
		verified.Metadata = checkoutSession.Metadata
	}
	return verified, nil
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

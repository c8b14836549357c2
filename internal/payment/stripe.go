package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// Config holds the Stripe credentials and redirect targets. The secret key
// never leaves this process; session creation is strictly server-side.
type Config struct {
	SecretKey     string
	WebhookSecret string
	SiteURL       string
}

func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("stripe: secret key is required")
	}
	if c.SiteURL == "" {
		return errors.New("stripe: site URL is required")
	}
	return nil
}

// LineItem is one cart line expressed the way the hosted payment page
// wants it: unit amount in minor units (cents).
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// SessionInput carries the cart snapshot and the metadata the webhook
// needs to create the order after payment confirms.
type SessionInput struct {
	Items            []LineItem
	UserID           string
	ShippingLocation string
	ItemsJSON        string
}

// Session is the opaque handle the browser is redirected to.
type Session struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// StripeGateway creates hosted checkout sessions and verifies webhook
// signatures.
type StripeGateway struct {
	config Config
	log    *zap.Logger
}

func NewStripeGateway(config Config, log *zap.Logger) (*StripeGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	stripe.Key = config.SecretKey
	return &StripeGateway{config: config, log: log}, nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, in SessionInput) (Session, error) {
	if len(in.Items) == 0 {
		return Session{}, errors.New("stripe: no line items")
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(in.Items))
	for _, it := range in.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(string(stripe.CurrencyUSD)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Name),
				},
				UnitAmount: stripe.Int64(it.UnitAmount),
			},
			Quantity: stripe.Int64(it.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(g.config.SiteURL + "/order-success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(g.config.SiteURL + "/cart"),
	}
	params.Context = ctx
	params.AddMetadata("user_id", in.UserID)
	params.AddMetadata("shipping_location", in.ShippingLocation)
	params.AddMetadata("items_json", in.ItemsJSON)

	sess, err := session.New(params)
	if err != nil {
		g.log.Error("create checkout session", zap.String("user_id", in.UserID), zap.Error(err))
		return Session{}, fmt.Errorf("stripe: create checkout session: %w", err)
	}

	g.log.Info("checkout session created",
		zap.String("user_id", in.UserID),
		zap.String("session_id", sess.ID))
	return Session{ID: sess.ID, URL: sess.URL}, nil
}

// VerifyWebhook checks the signature header and returns the parsed event.
func (g *StripeGateway) VerifyWebhook(payload []byte, signature string) (stripe.Event, error) {
	if g.config.WebhookSecret == "" {
		return stripe.Event{}, errors.New("stripe: webhook secret not configured")
	}
	return webhook.ConstructEvent(payload, signature, g.config.WebhookSecret)
}

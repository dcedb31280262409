package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kunkakamikasa/dramini-api/internal/model"
	"github.com/kunkakamikasa/dramini-api/internal/payments"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	eventCheckoutCompleted = "checkout.session.completed"
	eventCheckoutExpired   = "checkout.session.expired"
)

type Config struct {
	APIKey        string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// Client wraps stripe-go with an explicit API key. No global stripe.Key.
type Client struct {
	api           *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
}

func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("STRIPE_API_KEY not set")
	}
	if cfg.WebhookSecret == "" {
		// absent secret is a configuration error, never a verification bypass
		return nil, errors.New("STRIPE_WEBHOOK_SECRET not set")
	}

	return &Client{
		api:           client.New(cfg.APIKey, nil),
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
	}, nil
}

func (c *Client) Name() string { return payments.ProviderStripe }

// CreateCheckout builds a hosted checkout session. The internal order id
// rides in both the session metadata and the client reference id so the
// webhook can recover it without a side lookup table.
func (c *Client) CreateCheckout(ctx context.Context, tier model.CoinTier, orderID string, userID int64) (*payments.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(c.successURL),
		CancelURL:         stripe.String(c.cancelURL),
		ClientReferenceID: stripe.String(orderID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(tier.Currency),
					UnitAmount: stripe.Int64(tier.PriceCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(tier.Name),
					},
				},
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("order_id", orderID)
	params.AddMetadata("user_id", strconv.FormatInt(userID, 10))

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: stripe checkout: %v", payments.ErrTransient, err)
	}

	return &payments.CheckoutSession{
		ProviderOrderID: sess.ID,
		CheckoutURL:     sess.URL,
	}, nil
}

// VerifyWebhook checks the Stripe-Signature HMAC against the raw body bytes.
// Any re-encoding of the body before this point breaks the signature.
func (c *Client) VerifyWebhook(ctx context.Context, rawBody []byte, headers http.Header) (*payments.VerifiedEvent, error) {
	sig := headers.Get("Stripe-Signature")
	if sig == "" {
		return nil, fmt.Errorf("%w: missing Stripe-Signature header", payments.ErrSignatureInvalid)
	}

	event, err := webhook.ConstructEventWithOptions(rawBody, sig, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payments.ErrSignatureInvalid, err)
	}

	out := &payments.VerifiedEvent{
		Provider:  payments.ProviderStripe,
		EventID:   event.ID,
		EventType: string(event.Type),
	}

	switch string(event.Type) {
	case eventCheckoutCompleted, eventCheckoutExpired:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("%w: malformed session payload: %v", payments.ErrSignatureInvalid, err)
		}
		out.ProviderOrderID = sess.ID
		out.OrderID = sess.Metadata["order_id"]
		if out.OrderID == "" {
			out.OrderID = sess.ClientReferenceID
		}
		if string(event.Type) == eventCheckoutCompleted {
			out.Completion = sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid
		} else {
			out.Failure = true
		}
	}

	return out, nil
}

// GetOrder is the read-only poll used by the manual verification path.
func (c *Client) GetOrder(ctx context.Context, providerOrderID string) (*payments.RemoteOrder, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := c.api.CheckoutSessions.Get(providerOrderID, params)
	if err != nil {
		return nil, fmt.Errorf("%w: stripe session lookup: %v", payments.ErrTransient, err)
	}

	orderID := sess.Metadata["order_id"]
	if orderID == "" {
		orderID = sess.ClientReferenceID
	}

	return &payments.RemoteOrder{
		ProviderOrderID: sess.ID,
		OrderID:         orderID,
		Status:          string(sess.PaymentStatus),
		Paid:            sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}, nil
}

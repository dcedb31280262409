package payments

import (
	"context"
	"errors"
	"net/http"

	"github.com/kunkakamikasa/dramini-api/internal/model"
)

const (
	ProviderStripe = "stripe"
	ProviderPayPal = "paypal"
)

var (
	// ErrSignatureInvalid means webhook authenticity could not be established.
	// The event must not be processed and the provider gets a 400.
	ErrSignatureInvalid = errors.New("webhook signature invalid")

	// ErrTransient means the provider API or storage was unreachable.
	// Webhook handlers must NOT ack on this path so the provider retries.
	ErrTransient = errors.New("transient provider or storage failure")
)

// CheckoutSession is the provider-hosted checkout created for an order.
type CheckoutSession struct {
	ProviderOrderID string
	CheckoutURL     string
}

// VerifiedEvent is a webhook delivery that passed authenticity checks.
type VerifiedEvent struct {
	Provider        string
	EventID         string
	EventType       string
	OrderID         string // internal order id recovered from metadata/custom_id
	ProviderOrderID string
	Completion      bool // a paid/captured completion event
	Failure         bool // a terminal expire/deny event
}

// RemoteOrder is the provider's current view of a checkout, used by the
// read-only verification path.
type RemoteOrder struct {
	ProviderOrderID string
	OrderID         string
	Status          string
	Paid            bool
}

// Provider creates checkouts and authenticates webhooks for one payment
// processor. Implementations live under external/ and hold their own
// credentials; no package-level SDK state.
type Provider interface {
	Name() string
	CreateCheckout(ctx context.Context, tier model.CoinTier, orderID string, userID int64) (*CheckoutSession, error)
	VerifyWebhook(ctx context.Context, rawBody []byte, headers http.Header) (*VerifiedEvent, error)
	GetOrder(ctx context.Context, providerOrderID string) (*RemoteOrder, error)
}

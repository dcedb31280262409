package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kunkakamikasa/dramini-api/internal/model"
	"github.com/kunkakamikasa/dramini-api/internal/payments"

	"github.com/google/uuid"
)

var (
	ErrInvalidTier     = errors.New("unknown coin tier")
	ErrOrderNotFound   = errors.New("order not found")
	ErrUnknownProvider = errors.New("unknown payment provider")
	ErrForbidden       = errors.New("order belongs to another user")
)

// PaymentStore is the order/coin ledger storage. The pgx repository is the
// production implementation; tests substitute an in-memory fake.
type PaymentStore interface {
	CreateOrder(ctx context.Context, o *model.PaymentOrder) error
	GetOrder(ctx context.Context, orderID string) (*model.PaymentOrder, error)
	GetOrderByProviderEvent(ctx context.Context, provider, eventID string) (*model.PaymentOrder, error)
	GetOrderByProviderOrderID(ctx context.Context, provider, providerOrderID string) (*model.PaymentOrder, error)
	AttachProviderOrderID(ctx context.Context, orderID, providerOrderID string) error

	// CompleteOrder atomically flips a pending order to completed and credits
	// the coins. credited=false means another delivery already completed it.
	CompleteOrder(ctx context.Context, orderID, eventID string) (credited bool, err error)
	MarkOrderFailed(ctx context.Context, orderID string) error
}

// CompletionResult distinguishes the idempotent replay outcome from a first
// successful credit.
type CompletionResult struct {
	AlreadyProcessed bool                `json:"already_processed"`
	Order            *model.PaymentOrder `json:"order"`
}

type PaymentService struct {
	Store     PaymentStore
	Tiers     *TierCatalog
	Providers map[string]payments.Provider
}

func NewPaymentService(store PaymentStore, tiers *TierCatalog, providers ...payments.Provider) *PaymentService {
	byName := make(map[string]payments.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &PaymentService{
		Store:     store,
		Tiers:     tiers,
		Providers: byName,
	}
}

func (s *PaymentService) provider(name string) (payments.Provider, error) {
	p, ok := s.Providers[name]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return p, nil
}

// Checkout creates a pending order for a whitelisted tier and a provider
// checkout session carrying the order id as the correlation key.
func (s *PaymentService) Checkout(ctx context.Context, userID int64, providerName, tierKey string) (*model.PaymentOrder, string, error) {
	p, err := s.provider(providerName)
	if err != nil {
		return nil, "", err
	}

	// Tier amounts are never trusted from client input.
	tier, ok := s.Tiers.Resolve(tierKey)
	if !ok {
		return nil, "", ErrInvalidTier
	}

	meta, _ := json.Marshal(map[string]string{"tier": tier.Key})

	order := &model.PaymentOrder{
		OrderID:     uuid.NewString(),
		UserID:      userID,
		TierKey:     tier.Key,
		Provider:    p.Name(),
		AmountCents: tier.PriceCents,
		Currency:    tier.Currency,
		Coins:       tier.TotalCoins(),
		Status:      model.OrderStatusPending,
		Metadata:    meta,
	}
	if err := s.Store.CreateOrder(ctx, order); err != nil {
		return nil, "", fmt.Errorf("%w: create order: %v", payments.ErrTransient, err)
	}

	sess, err := p.CreateCheckout(ctx, tier, order.OrderID, userID)
	if err != nil {
		return nil, "", err
	}

	if err := s.Store.AttachProviderOrderID(ctx, order.OrderID, sess.ProviderOrderID); err != nil {
		return nil, "", fmt.Errorf("%w: attach provider order id: %v", payments.ErrTransient, err)
	}
	order.ProviderOrderID = &sess.ProviderOrderID

	return order, sess.CheckoutURL, nil
}

// Complete is the single crediting entry point. Webhook delivery and the
// manual verification poll both funnel through here; at most one coin credit
// happens per order no matter how many times it is invoked.
func (s *PaymentService) Complete(ctx context.Context, providerName, orderRef, eventID string) (*CompletionResult, error) {
	order, err := s.lookupOrder(ctx, providerName, orderRef, eventID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		// never create an order here; createOrder is the only entry
		return nil, ErrOrderNotFound
	}

	// Idempotency short-circuit before any transactional path.
	if order.Status == model.OrderStatusCompleted {
		return &CompletionResult{AlreadyProcessed: true, Order: order}, nil
	}

	credited, err := s.Store.CompleteOrder(ctx, order.OrderID, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: complete order: %v", payments.ErrTransient, err)
	}

	fresh, err := s.Store.GetOrder(ctx, order.OrderID)
	if err != nil || fresh == nil {
		// credit committed; the re-read is cosmetic
		fresh = order
	}

	if !credited {
		// lost the race against a concurrent delivery of the same order
		return &CompletionResult{AlreadyProcessed: true, Order: fresh}, nil
	}
	return &CompletionResult{AlreadyProcessed: false, Order: fresh}, nil
}

// lookupOrder resolves a completion reference: internal order id first, then
// a previously recorded provider event id (webhook retries), then the
// provider-side order id.
func (s *PaymentService) lookupOrder(ctx context.Context, providerName, orderRef, eventID string) (*model.PaymentOrder, error) {
	if orderRef != "" {
		order, err := s.Store.GetOrder(ctx, orderRef)
		if err != nil {
			return nil, fmt.Errorf("%w: order lookup: %v", payments.ErrTransient, err)
		}
		if order != nil {
			return order, nil
		}

		order, err = s.Store.GetOrderByProviderOrderID(ctx, providerName, orderRef)
		if err != nil {
			return nil, fmt.Errorf("%w: order lookup: %v", payments.ErrTransient, err)
		}
		if order != nil {
			return order, nil
		}
	}

	if eventID != "" {
		order, err := s.Store.GetOrderByProviderEvent(ctx, providerName, eventID)
		if err != nil {
			return nil, fmt.Errorf("%w: order lookup: %v", payments.ErrTransient, err)
		}
		if order != nil {
			return order, nil
		}
	}

	return nil, nil
}

// HandleWebhook verifies an inbound delivery and applies it. Callers map the
// error taxonomy to the ack policy: only payments.ErrTransient may produce a
// retry-inviting response.
func (s *PaymentService) HandleWebhook(ctx context.Context, providerName string, rawBody []byte, headers http.Header) (*CompletionResult, error) {
	p, err := s.provider(providerName)
	if err != nil {
		return nil, err
	}

	event, err := p.VerifyWebhook(ctx, rawBody, headers)
	if err != nil {
		return nil, err
	}

	switch {
	case event.Completion:
		orderRef := event.OrderID
		if orderRef == "" {
			orderRef = event.ProviderOrderID
		}
		return s.Complete(ctx, providerName, orderRef, event.EventID)

	case event.Failure:
		order, err := s.lookupOrder(ctx, providerName, event.OrderID, event.EventID)
		if err != nil {
			return nil, err
		}
		if order == nil && event.ProviderOrderID != "" {
			order, err = s.lookupOrder(ctx, providerName, event.ProviderOrderID, event.EventID)
			if err != nil {
				return nil, err
			}
		}
		if order == nil {
			return nil, ErrOrderNotFound
		}
		if err := s.Store.MarkOrderFailed(ctx, order.OrderID); err != nil {
			return nil, fmt.Errorf("%w: mark failed: %v", payments.ErrTransient, err)
		}
		return &CompletionResult{Order: order}, nil

	default:
		// large provider taxonomies; only completion/failure events matter
		return nil, nil
	}
}

// VerifyOrder polls the provider for the current state of a checkout. It is
// read-only against the provider; if a paid state is observed that the local
// order does not yet reflect, it delegates to Complete rather than crediting
// on its own.
func (s *PaymentService) VerifyOrder(ctx context.Context, userID int64, providerName, orderRef string) (*CompletionResult, error) {
	p, err := s.provider(providerName)
	if err != nil {
		return nil, err
	}

	order, err := s.lookupOrder(ctx, providerName, orderRef, "")
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}

	if order.Status == model.OrderStatusCompleted {
		return &CompletionResult{AlreadyProcessed: true, Order: order}, nil
	}
	if order.ProviderOrderID == nil {
		return &CompletionResult{Order: order}, nil
	}

	remote, err := p.GetOrder(ctx, *order.ProviderOrderID)
	if err != nil {
		return nil, err
	}
	if !remote.Paid {
		return &CompletionResult{Order: order}, nil
	}

	// The provider order id is stable per order, so a webhook racing this
	// poll still resolves to a single credit via the status guard.
	return s.Complete(ctx, providerName, order.OrderID, *order.ProviderOrderID)
}

// GetOrder is the ownership-checked status read behind GET /payment/orders.
func (s *PaymentService) GetOrder(ctx context.Context, userID int64, orderID string) (*model.PaymentOrder, error) {
	order, err := s.Store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: order lookup: %v", payments.ErrTransient, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	return order, nil
}

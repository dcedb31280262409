package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kunkakamikasa/dramini-api/internal/model"
	"github.com/kunkakamikasa/dramini-api/internal/payments"
)

const (
	eventCaptureCompleted = "PAYMENT.CAPTURE.COMPLETED"
	eventCaptureDenied    = "PAYMENT.CAPTURE.DENIED"
)

// headers PayPal sends with every webhook delivery; all of them must be
// forwarded to the verification endpoint
var transmissionHeaders = []string{
	"Paypal-Transmission-Id",
	"Paypal-Transmission-Time",
	"Paypal-Transmission-Sig",
	"Paypal-Cert-Url",
	"Paypal-Auth-Algo",
}

type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	WebhookID    string
	SuccessURL   string
	CancelURL    string
}

type Client struct {
	clientID   string
	secret     string
	baseURL    string
	webhookID  string
	successURL string
	cancelURL  string
	client     *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("PAYPAL_CLIENT_ID / PAYPAL_CLIENT_SECRET not set")
	}
	if cfg.WebhookID == "" {
		return nil, errors.New("PAYPAL_WEBHOOK_ID not set")
	}

	return &Client{
		clientID:   cfg.ClientID,
		secret:     cfg.ClientSecret,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		webhookID:  cfg.WebhookID,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (c *Client) Name() string { return payments.ProviderPayPal }

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/v1/oauth2/token",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: paypal token: %v", payments.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: paypal token: %s", payments.ErrTransient, resp.Status)
	}

	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: paypal token: %v", payments.ErrTransient, err)
	}
	return out.AccessToken, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: paypal %s %s: %v", payments.ErrTransient, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		return fmt.Errorf("%w: paypal %s %s: %s %s", payments.ErrTransient, method, path, resp.Status, buf.String())
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

type orderLink struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type createOrderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
	PaymentSource *paymentSource `json:"payment_source,omitempty"`
}

type purchaseUnit struct {
	CustomID    string       `json:"custom_id,omitempty"`
	Description string       `json:"description,omitempty"`
	Amount      *orderAmount `json:"amount,omitempty"`
	Payments    *unitPayment `json:"payments,omitempty"`
}

type orderAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type unitPayment struct {
	Captures []captureResource `json:"captures"`
}

type captureResource struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type paymentSource struct {
	PayPal *paypalSource `json:"paypal,omitempty"`
}

type paypalSource struct {
	ExperienceContext *experienceContext `json:"experience_context,omitempty"`
}

type experienceContext struct {
	ReturnURL string `json:"return_url,omitempty"`
	CancelURL string `json:"cancel_url,omitempty"`
}

type orderResponse struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
	Links         []orderLink    `json:"links"`
}

// CreateCheckout creates a CAPTURE-intent order carrying the internal order
// id as custom_id, the correlation key the webhook relies on.
func (c *Client) CreateCheckout(ctx context.Context, tier model.CoinTier, orderID string, userID int64) (*payments.CheckoutSession, error) {
	reqBody := createOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{
			{
				CustomID:    orderID,
				Description: tier.Name,
				Amount: &orderAmount{
					CurrencyCode: tier.Currency,
					Value:        formatCents(tier.PriceCents),
				},
			},
		},
		PaymentSource: &paymentSource{
			PayPal: &paypalSource{
				ExperienceContext: &experienceContext{
					ReturnURL: c.successURL,
					CancelURL: c.cancelURL,
				},
			},
		},
	}

	var out orderResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v2/checkout/orders", reqBody, &out); err != nil {
		return nil, err
	}

	approveURL := ""
	for _, l := range out.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			approveURL = l.Href
			break
		}
	}
	if approveURL == "" {
		return nil, fmt.Errorf("%w: paypal order %s has no approve link", payments.ErrTransient, out.ID)
	}

	return &payments.CheckoutSession{
		ProviderOrderID: out.ID,
		CheckoutURL:     approveURL,
	}, nil
}

type verifyRequest struct {
	AuthAlgo         string          `json:"auth_algo"`
	CertURL          string          `json:"cert_url"`
	TransmissionID   string          `json:"transmission_id"`
	TransmissionSig  string          `json:"transmission_sig"`
	TransmissionTime string          `json:"transmission_time"`
	WebhookID        string          `json:"webhook_id"`
	WebhookEvent     json.RawMessage `json:"webhook_event"`
}

type verifyResponse struct {
	VerificationStatus string `json:"verification_status"`
}

type webhookEvent struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		ID                string `json:"id"`
		Status            string `json:"status"`
		CustomID          string `json:"custom_id"`
		SupplementaryData struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
	} `json:"resource"`
}

// VerifyWebhook asks PayPal's verification endpoint whether the delivery is
// authentic. PayPal's API is the source of truth; no local signature scheme.
// The event body is forwarded as raw bytes so the provider verifies exactly
// what arrived on the wire.
func (c *Client) VerifyWebhook(ctx context.Context, rawBody []byte, headers http.Header) (*payments.VerifiedEvent, error) {
	vals := make(map[string]string, len(transmissionHeaders))
	for _, h := range transmissionHeaders {
		v := headers.Get(h)
		if v == "" {
			return nil, fmt.Errorf("%w: missing %s header", payments.ErrSignatureInvalid, h)
		}
		vals[h] = v
	}

	reqBody := verifyRequest{
		AuthAlgo:         vals["Paypal-Auth-Algo"],
		CertURL:          vals["Paypal-Cert-Url"],
		TransmissionID:   vals["Paypal-Transmission-Id"],
		TransmissionSig:  vals["Paypal-Transmission-Sig"],
		TransmissionTime: vals["Paypal-Transmission-Time"],
		WebhookID:        c.webhookID,
		WebhookEvent:     json.RawMessage(rawBody),
	}

	var out verifyResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/notifications/verify-webhook-signature", reqBody, &out); err != nil {
		return nil, err
	}
	if out.VerificationStatus != "SUCCESS" {
		return nil, fmt.Errorf("%w: paypal verification status %s", payments.ErrSignatureInvalid, out.VerificationStatus)
	}

	var ev webhookEvent
	if err := json.Unmarshal(rawBody, &ev); err != nil {
		return nil, fmt.Errorf("%w: malformed event body: %v", payments.ErrSignatureInvalid, err)
	}

	result := &payments.VerifiedEvent{
		Provider:        payments.ProviderPayPal,
		EventID:         ev.ID,
		EventType:       ev.EventType,
		OrderID:         ev.Resource.CustomID,
		ProviderOrderID: ev.Resource.SupplementaryData.RelatedIDs.OrderID,
	}

	switch ev.EventType {
	case eventCaptureCompleted:
		result.Completion = ev.Resource.Status == "COMPLETED"
	case eventCaptureDenied:
		result.Failure = true
	}

	return result, nil
}

// GetOrder is the read-only poll used by the manual verification path.
func (c *Client) GetOrder(ctx context.Context, providerOrderID string) (*payments.RemoteOrder, error) {
	var out orderResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v2/checkout/orders/"+url.PathEscape(providerOrderID), nil, &out); err != nil {
		return nil, err
	}

	ro := &payments.RemoteOrder{
		ProviderOrderID: out.ID,
		Status:          out.Status,
		Paid:            out.Status == "COMPLETED",
	}
	if len(out.PurchaseUnits) > 0 {
		ro.OrderID = out.PurchaseUnits[0].CustomID
	}
	return ro, nil
}

// formatCents renders integer minor units as PayPal's decimal string. The
// minor-units convention holds everywhere else in the system.
func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

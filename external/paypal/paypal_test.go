package paypal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kunkakamikasa/dramini-api/internal/model"
	"github.com/kunkakamikasa/dramini-api/internal/payments"

	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	return Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		BaseURL:      baseURL,
		WebhookID:    "WH-ID-1",
		SuccessURL:   "http://localhost/success",
		CancelURL:    "http://localhost/cancel",
	}
}

// newPayPalStub serves the token endpoint plus whatever extra routes a test
// registers.
func newPayPalStub(t *testing.T, mux *http.ServeMux) *httptest.Server {
	t.Helper()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-1", "expires_in": 3600})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func captureEventBody(status string) []byte {
	return []byte(`{
		"id": "WH-EVT-1",
		"event_type": "PAYMENT.CAPTURE.COMPLETED",
		"resource": {
			"id": "CAP-1",
			"status": "` + status + `",
			"custom_id": "ord-1",
			"supplementary_data": {"related_ids": {"order_id": "PP-ORDER-1"}}
		}
	}`)
}

func transmissionHeadersFor() http.Header {
	h := http.Header{}
	h.Set("Paypal-Transmission-Id", "tid-1")
	h.Set("Paypal-Transmission-Time", "2026-01-02T03:04:05Z")
	h.Set("Paypal-Transmission-Sig", "sig-1")
	h.Set("Paypal-Cert-Url", "https://api.paypal.com/cert.pem")
	h.Set("Paypal-Auth-Algo", "SHA256withRSA")
	return h
}

func TestVerifyWebhook_ConsultsVerificationEndpoint(t *testing.T) {
	var got verifyRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/notifications/verify-webhook-signature", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]string{"verification_status": "SUCCESS"})
	})
	srv := newPayPalStub(t, mux)

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	body := captureEventBody("COMPLETED")
	ev, err := c.VerifyWebhook(context.Background(), body, transmissionHeadersFor())
	require.NoError(t, err)

	// all transmission headers plus the untouched event body reach PayPal
	require.Equal(t, "tid-1", got.TransmissionID)
	require.Equal(t, "sig-1", got.TransmissionSig)
	require.Equal(t, "SHA256withRSA", got.AuthAlgo)
	require.Equal(t, "WH-ID-1", got.WebhookID)
	require.JSONEq(t, string(body), string(got.WebhookEvent))

	require.Equal(t, "WH-EVT-1", ev.EventID)
	require.Equal(t, "ord-1", ev.OrderID)
	require.Equal(t, "PP-ORDER-1", ev.ProviderOrderID)
	require.True(t, ev.Completion)
}

func TestVerifyWebhook_FailureStatusRejects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/notifications/verify-webhook-signature", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"verification_status": "FAILURE"})
	})
	srv := newPayPalStub(t, mux)

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = c.VerifyWebhook(context.Background(), captureEventBody("COMPLETED"), transmissionHeadersFor())
	require.ErrorIs(t, err, payments.ErrSignatureInvalid)
}

func TestVerifyWebhook_MissingHeaderRejectsWithoutCallingPayPal(t *testing.T) {
	called := false
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/notifications/verify-webhook-signature", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	srv := newPayPalStub(t, mux)

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	headers := transmissionHeadersFor()
	headers.Del("Paypal-Transmission-Sig")
	_, err = c.VerifyWebhook(context.Background(), captureEventBody("COMPLETED"), headers)
	require.ErrorIs(t, err, payments.ErrSignatureInvalid)
	require.False(t, called)
}

func TestVerifyWebhook_VerificationOutageIsTransient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/notifications/verify-webhook-signature", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	srv := newPayPalStub(t, mux)

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = c.VerifyWebhook(context.Background(), captureEventBody("COMPLETED"), transmissionHeadersFor())
	require.ErrorIs(t, err, payments.ErrTransient)
	require.NotErrorIs(t, err, payments.ErrSignatureInvalid)
}

func TestVerifyWebhook_IncompleteCaptureIsNotACompletion(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/notifications/verify-webhook-signature", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"verification_status": "SUCCESS"})
	})
	srv := newPayPalStub(t, mux)

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	ev, err := c.VerifyWebhook(context.Background(), captureEventBody("PENDING"), transmissionHeadersFor())
	require.NoError(t, err)
	require.False(t, ev.Completion)
}

func TestCreateCheckout_EmbedsOrderIDAsCustomID(t *testing.T) {
	var got createOrderRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "PP-ORDER-1",
			"status": "CREATED",
			"links": []map[string]string{
				{"href": "https://paypal.test/self", "rel": "self"},
				{"href": "https://paypal.test/approve", "rel": "payer-action"},
			},
		})
	})
	srv := newPayPalStub(t, mux)

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	tier := model.CoinTier{Key: "coins_300", Name: "300 Coins + 50 Bonus", Coins: 300, BonusCoins: 50, PriceCents: 499, Currency: "USD"}
	sess, err := c.CreateCheckout(context.Background(), tier, "ord-1", 42)
	require.NoError(t, err)
	require.Equal(t, "PP-ORDER-1", sess.ProviderOrderID)
	require.Equal(t, "https://paypal.test/approve", sess.CheckoutURL)

	require.Equal(t, "CAPTURE", got.Intent)
	require.Len(t, got.PurchaseUnits, 1)
	require.Equal(t, "ord-1", got.PurchaseUnits[0].CustomID)
	require.Equal(t, "4.99", got.PurchaseUnits[0].Amount.Value)
	require.Equal(t, "USD", got.PurchaseUnits[0].Amount.CurrencyCode)
}

func TestGetOrder_ReportsPaidState(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders/PP-ORDER-1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "PP-ORDER-1",
			"status": "COMPLETED",
			"purchase_units": []map[string]any{
				{"custom_id": "ord-1"},
			},
		})
	})
	srv := newPayPalStub(t, mux)

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	ro, err := c.GetOrder(context.Background(), "PP-ORDER-1")
	require.NoError(t, err)
	require.True(t, ro.Paid)
	require.Equal(t, "ord-1", ro.OrderID)
}

func TestFormatCents(t *testing.T) {
	cases := map[int64]string{
		0:    "0.00",
		5:    "0.05",
		499:  "4.99",
		1500: "15.00",
	}
	for cents, want := range cases {
		if got := formatCents(cents); got != want {
			t.Errorf("formatCents(%d) = %s, want %s", cents, got, want)
		}
	}
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New(Config{WebhookID: "WH"})
	require.Error(t, err)

	// a missing webhook id would make every verification call meaningless
	_, err = New(Config{ClientID: "id", ClientSecret: "secret"})
	require.Error(t, err)
}

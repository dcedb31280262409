package config

import "os"

// Config is read once in main and handed to constructors. Provider adapters
// never reach into the environment themselves.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	Stripe   StripeConfig
	PayPal   PayPalConfig
	Checkout CheckoutConfig
}

type StripeConfig struct {
	APIKey        string
	WebhookSecret string
}

type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string // https://api-m.sandbox.paypal.com or live
	WebhookID    string
}

type CheckoutConfig struct {
	SuccessURL string
	CancelURL  string
}

func Load() *Config {
	cfg := &Config{
		Port:        getenv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   getenv("JWT_SECRET", "dev-secret-please-change"),
		Stripe: StripeConfig{
			APIKey:        os.Getenv("STRIPE_API_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		},
		PayPal: PayPalConfig{
			ClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
			ClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
			BaseURL:      getenv("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
			WebhookID:    os.Getenv("PAYPAL_WEBHOOK_ID"),
		},
		Checkout: CheckoutConfig{
			SuccessURL: getenv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/payment/success"),
			CancelURL:  getenv("CHECKOUT_CANCEL_URL", "http://localhost:3000/payment/cancel"),
		},
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

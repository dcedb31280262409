package main

import (
	"log"

	"github.com/kunkakamikasa/dramini-api/external/paypal"
	"github.com/kunkakamikasa/dramini-api/external/stripe"

	"github.com/kunkakamikasa/dramini-api/internal/config"
	"github.com/kunkakamikasa/dramini-api/internal/db"
	"github.com/kunkakamikasa/dramini-api/internal/middleware"
	"github.com/kunkakamikasa/dramini-api/internal/repository"
	"github.com/kunkakamikasa/dramini-api/internal/services"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg := config.Load()

	// ======================
	// INFRA
	// ======================
	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	tokenIssuer, err := middleware.NewTokenIssuer(cfg.JWTSecret)
	if err != nil {
		log.Fatal(err)
	}

	// ======================
	// PROVIDERS
	// ======================
	stripeClient, err := stripe.New(stripe.Config{
		APIKey:        cfg.Stripe.APIKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		SuccessURL:    cfg.Checkout.SuccessURL,
		CancelURL:     cfg.Checkout.CancelURL,
	})
	if err != nil {
		log.Fatal(err)
	}

	paypalClient, err := paypal.New(paypal.Config{
		ClientID:     cfg.PayPal.ClientID,
		ClientSecret: cfg.PayPal.ClientSecret,
		BaseURL:      cfg.PayPal.BaseURL,
		WebhookID:    cfg.PayPal.WebhookID,
		SuccessURL:   cfg.Checkout.SuccessURL,
		CancelURL:    cfg.Checkout.CancelURL,
	})
	if err != nil {
		log.Fatal(err)
	}

	tiers, err := services.NewTierCatalog(services.DefaultTiers())
	if err != nil {
		log.Fatal(err)
	}

	// ======================
	// REPOSITORIES
	// ======================
	userRepo := repository.NewUserRepository(pool)
	dramaRepo := repository.NewDramaRepository(pool)
	orderRepo := repository.NewPaymentOrderRepository(pool)
	coinRepo := repository.NewCoinRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)

	// ======================
	// SERVICES
	// ======================
	authSvc := services.NewAuthService(userRepo)
	dramaSvc := services.NewDramaService(dramaRepo)
	coinSvc := services.NewCoinService(coinRepo)
	analyticsSvc := services.NewAnalyticsService(analyticsRepo)
	paymentSvc := services.NewPaymentService(orderRepo, tiers, stripeClient, paypalClient)

	// ======================
	// ECHO
	// ======================
	e := echo.New()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	api := e.Group("")

	// ======================
	// ROUTES (ONLY REGISTRATION)
	// ======================
	registerAuthRoutes(api, authSvc, tokenIssuer)
	registerCatalogRoutes(api, dramaSvc)
	registerCoinRoutes(api, coinSvc, tokenIssuer)
	registerPaymentRoutes(api, paymentSvc, tokenIssuer)
	registerWebhookRoutes(api, paymentSvc)
	registerAnalyticsRoutes(api, analyticsSvc, tokenIssuer)

	// ======================
	// SERVER
	// ======================
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

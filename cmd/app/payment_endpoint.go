package main

import (
	"errors"
	"net/http"

	"github.com/kunkakamikasa/dramini-api/internal/middleware"
	"github.com/kunkakamikasa/dramini-api/internal/payments"
	"github.com/kunkakamikasa/dramini-api/internal/services"

	"github.com/labstack/echo/v4"
)

type checkoutRequest struct {
	TierKey string `json:"tier_key"`
}

type verifyRequest struct {
	OrderID   string `json:"order_id"`
	SessionID string `json:"session_id"`
}

func registerPaymentRoutes(g *echo.Group, ps *services.PaymentService, ti *middleware.TokenIssuer) {
	p := g.Group("/payment")

	// PUBLIC: tier listing
	p.GET("/tiers", func(c echo.Context) error {
		return c.JSON(http.StatusOK, ps.Tiers.List())
	})

	// Everything below requires a session
	p.Use(ti.JWTMiddleware())

	// POST /payment/checkout/:provider
	p.POST("/checkout/:provider", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		if cl == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
		}

		req := new(checkoutRequest)
		if err := c.Bind(req); err != nil || req.TierKey == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "tier_key required"})
		}

		order, checkoutURL, err := ps.Checkout(
			c.Request().Context(),
			cl.UserID,
			c.Param("provider"),
			req.TierKey,
		)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidTier):
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown tier"})
			case errors.Is(err, services.ErrUnknownProvider):
				return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown provider"})
			default:
				c.Logger().Errorf("checkout failed: %v", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "checkout failed"})
			}
		}

		return c.JSON(http.StatusOK, echo.Map{
			"order_id":     order.OrderID,
			"checkout_url": checkoutURL,
		})
	})

	// GET /payment/orders/:orderId — read-only status lookup
	p.GET("/orders/:orderId", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		if cl == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
		}

		order, err := ps.GetOrder(c.Request().Context(), cl.UserID, c.Param("orderId"))
		if err != nil {
			switch {
			case errors.Is(err, services.ErrOrderNotFound):
				return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
			case errors.Is(err, services.ErrForbidden):
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			default:
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
			}
		}
		return c.JSON(http.StatusOK, order)
	})

	// POST /payment/verify/:provider — poll the provider; credits only via
	// the shared completion path
	p.POST("/verify/:provider", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		if cl == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
		}

		req := new(verifyRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
		}
		ref := req.OrderID
		if ref == "" {
			ref = req.SessionID
		}
		if ref == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "order_id or session_id required"})
		}

		res, err := ps.VerifyOrder(c.Request().Context(), cl.UserID, c.Param("provider"), ref)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrOrderNotFound):
				return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
			case errors.Is(err, services.ErrForbidden):
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			case errors.Is(err, services.ErrUnknownProvider):
				return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown provider"})
			case errors.Is(err, payments.ErrTransient):
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "try again later"})
			default:
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verification failed"})
			}
		}

		return c.JSON(http.StatusOK, echo.Map{
			"already_processed": res.AlreadyProcessed,
			"order":             res.Order,
		})
	})
}

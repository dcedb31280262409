package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/kunkakamikasa/dramini-api/internal/payments"
	"github.com/kunkakamikasa/dramini-api/internal/services"

	"github.com/labstack/echo/v4"
)

// registerWebhookRoutes wires the provider callback endpoints. These MUST be
// public (no JWT) and MUST hand the adapter the exact bytes received on the
// wire; binding/re-encoding the body first would break signature checks.
func registerWebhookRoutes(g *echo.Group, ps *services.PaymentService) {
	g.POST("/webhooks/:provider", func(c echo.Context) error {
		rawBody, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable body"})
		}

		res, err := ps.HandleWebhook(
			c.Request().Context(),
			c.Param("provider"),
			rawBody,
			c.Request().Header,
		)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUnknownProvider):
				return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown provider"})

			case errors.Is(err, payments.ErrSignatureInvalid):
				// forged or malformed; no processing, no retry encouragement
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "signature verification failed"})

			case errors.Is(err, payments.ErrTransient):
				// NOT acknowledged: the provider's retry re-delivers later
				c.Logger().Errorf("webhook transient failure: %v", err)
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporary failure, retry"})

			default:
				// OrderNotFound and other unrecoverable mismatches: ack so the
				// provider does not retry an order that will never exist
				c.Logger().Warnf("webhook ignored: %v", err)
				return c.JSON(http.StatusOK, echo.Map{"received": true, "status": "ignored"})
			}
		}

		if res != nil && res.AlreadyProcessed {
			return c.JSON(http.StatusOK, echo.Map{"received": true, "status": "already_processed"})
		}
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	})
}

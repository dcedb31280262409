package main

import (
	"net/http"

	"github.com/kunkakamikasa/dramini-api/internal/middleware"
	"github.com/kunkakamikasa/dramini-api/internal/services"

	"github.com/labstack/echo/v4"
)

type trackRequest struct {
	Event string `json:"event"`
}

func registerAnalyticsRoutes(g *echo.Group, as *services.AnalyticsService, ti *middleware.TokenIssuer) {
	a := g.Group("/analytics")

	// fire-and-forget counter; failures never reach the client
	a.POST("/track", func(c echo.Context) error {
		req := new(trackRequest)
		if err := c.Bind(req); err != nil || req.Event == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "event required"})
		}
		if err := as.Track(c.Request().Context(), req.Event); err != nil {
			c.Logger().Warnf("analytics track dropped: %v", err)
		}
		return c.JSON(http.StatusAccepted, echo.Map{"tracked": true})
	})

	counters := a.Group("/counters")
	counters.Use(ti.JWTMiddleware())
	counters.Use(middleware.AdminOnly)

	counters.GET("", func(c echo.Context) error {
		list, err := as.ListCounters(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "counters unavailable"})
		}
		return c.JSON(http.StatusOK, list)
	})
}

package main

import (
	"net/http"
	"strconv"

	"github.com/kunkakamikasa/dramini-api/internal/middleware"
	"github.com/kunkakamikasa/dramini-api/internal/services"

	"github.com/labstack/echo/v4"
)

func registerCoinRoutes(g *echo.Group, cs *services.CoinService, ti *middleware.TokenIssuer) {
	coins := g.Group("/coins")
	coins.Use(ti.JWTMiddleware())

	coins.GET("/balance", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		if cl == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
		}
		b, err := cs.GetBalance(c.Request().Context(), cl.UserID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "balance unavailable"})
		}
		return c.JSON(http.StatusOK, b)
	})

	coins.GET("/transactions", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		if cl == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
		}
		limit, _ := strconv.Atoi(c.QueryParam("limit"))
		txs, err := cs.ListTransactions(c.Request().Context(), cl.UserID, limit)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "history unavailable"})
		}
		return c.JSON(http.StatusOK, txs)
	})
}

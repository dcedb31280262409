package main

import (
	"net/http"
	"strconv"

	"github.com/kunkakamikasa/dramini-api/internal/services"

	"github.com/labstack/echo/v4"
)

func registerCatalogRoutes(g *echo.Group, ds *services.DramaService) {
	dramas := g.Group("/dramas")

	dramas.GET("", func(c echo.Context) error {
		list, err := ds.List(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "catalog unavailable"})
		}
		return c.JSON(http.StatusOK, list)
	})

	dramas.GET("/:id", func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid drama id"})
		}
		d, err := ds.GetByID(c.Request().Context(), id)
		if err != nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "drama not found"})
		}
		return c.JSON(http.StatusOK, d)
	})

	dramas.GET("/:id/episodes", func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid drama id"})
		}
		eps, err := ds.ListEpisodes(c.Request().Context(), id)
		if err != nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "drama not found"})
		}
		return c.JSON(http.StatusOK, eps)
	})
}

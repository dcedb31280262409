package main

import (
	"net/http"

	"github.com/kunkakamikasa/dramini-api/internal/middleware"
	"github.com/kunkakamikasa/dramini-api/internal/services"

	"github.com/labstack/echo/v4"
)

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func registerAuthRoutes(g *echo.Group, as *services.AuthService, ti *middleware.TokenIssuer) {
	auth := g.Group("/auth")

	auth.POST("/signup", func(c echo.Context) error {
		req := new(signupRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
		}
		userID, err := as.Register(c.Request().Context(), req.Email, req.Password)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusCreated, echo.Map{"user_id": userID})
	})

	auth.POST("/signin", func(c echo.Context) error {
		req := new(signinRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
		}
		user, err := as.Login(c.Request().Context(), req.Email, req.Password)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		token, err := ti.GenerateToken(user.UserID, user.Email, user.Role, 72)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token generation failed"})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"token": token,
			"user":  user,
		})
	})

	me := g.Group("/users")
	me.Use(ti.JWTMiddleware())

	me.GET("/me", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		if cl == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
		}
		user, err := as.GetByID(c.Request().Context(), cl.UserID)
		if err != nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusOK, user)
	})
}

// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"fidelity/internal/delivery/http/middleware"
	"fidelity/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	FidelityHandler     *handler.FidelityHandler
	RequestIDMiddleware *middleware.RequestIDMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	fidelityHandler     *handler.FidelityHandler
	requestIDMiddleware *middleware.RequestIDMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		fidelityHandler:     params.FidelityHandler,
		requestIDMiddleware: params.RequestIDMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.Use(r.requestIDMiddleware.Process)

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	cardGroup := e.Group("/fidelity-card")
	{
		cardGroup.GET("/email-validation", r.fidelityHandler.EmailValidation)
		cardGroup.GET("/email-confirmation", r.fidelityHandler.EmailConfirmation)
		cardGroup.GET("/profile", r.fidelityHandler.GetProfile)
		cardGroup.GET("/qrcode/:code", r.fidelityHandler.GetQRCode)
		cardGroup.GET("/cache-status", r.fidelityHandler.CacheStatus)
		cardGroup.DELETE("/clear-email-from-cache", r.fidelityHandler.ClearEmailFromCache)
		cardGroup.POST("", r.fidelityHandler.Create)
	}
}

package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/zhaoeryu/eu-authd/internal/handlers"
	"github.com/zhaoeryu/eu-authd/internal/middleware"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(router chi.Router, authHandler *handlers.AuthHandler) {
	router.With(middleware.RateLimitByIP(middleware.LoginRateLimit())).
		Post("/auth/login", authHandler.Login)
	router.With(middleware.RateLimitByIP(middleware.ChallengeRateLimit())).
		Get("/auth/captcha", authHandler.Challenge)
}

// Package lms предоставляет маршруты для основного приложения.
package lms

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/brainxcel/lms-backend/internal/cache"
	"github.com/brainxcel/lms-backend/internal/config"
	"github.com/brainxcel/lms-backend/internal/http/handlers/auth/guestlogin"
	"github.com/brainxcel/lms-backend/internal/http/handlers/auth/login"
	"github.com/brainxcel/lms-backend/internal/http/handlers/auth/logout"
	"github.com/brainxcel/lms-backend/internal/http/handlers/auth/refresh"
	"github.com/brainxcel/lms-backend/internal/http/handlers/auth/register"
	"github.com/brainxcel/lms-backend/internal/http/handlers/course/access"
	"github.com/brainxcel/lms-backend/internal/http/handlers/health"
	"github.com/brainxcel/lms-backend/internal/http/handlers/password/change"
	"github.com/brainxcel/lms-backend/internal/http/handlers/password/forgot"
	passwordreset "github.com/brainxcel/lms-backend/internal/http/handlers/password/reset"
	"github.com/brainxcel/lms-backend/internal/http/handlers/payment/order"
	"github.com/brainxcel/lms-backend/internal/http/handlers/payment/paymentlist"
	"github.com/brainxcel/lms-backend/internal/http/handlers/payment/subscribe"
	"github.com/brainxcel/lms-backend/internal/http/handlers/payment/unsubscribe"
	"github.com/brainxcel/lms-backend/internal/http/handlers/payment/verifyorder"
	"github.com/brainxcel/lms-backend/internal/http/handlers/payment/verifysubscription"
	"github.com/brainxcel/lms-backend/internal/http/handlers/user/profile"
	"github.com/brainxcel/lms-backend/internal/http/middlewarectx"
	"github.com/brainxcel/lms-backend/internal/models"
	authservice "github.com/brainxcel/lms-backend/internal/services/auth"
	entitlementservice "github.com/brainxcel/lms-backend/internal/services/entitlement"
	resetservice "github.com/brainxcel/lms-backend/internal/services/reset"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	authService *authservice.Service, entitlementService *entitlementservice.Service,
	resetService *resetservice.Service, cacheRedis *cache.Cache) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	limiter := rate.NewLimiter(10, 30)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService, cfg.AccessTTL, cfg.RefreshTTL).ServeHTTP)
		r.Post("/login", login.New(logger, authService, cfg.AccessTTL, cfg.RefreshTTL).ServeHTTP)
		r.Get("/guest-login", guestlogin.New(logger, authService, cfg.AccessTTL, cfg.RefreshTTL).ServeHTTP)
		r.Post("/refresh-token", refresh.New(logger, authService, cfg.AccessTTL, cfg.RefreshTTL).ServeHTTP)
		r.Post("/forgot-password", forgot.New(logger, resetService).ServeHTTP)
		r.Post("/reset-password/{resetToken}", passwordreset.New(logger, resetService).ServeHTTP)

		// Группа с cookie-сессией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.SessionGate(authService, cfg.AccessTTL, cfg.RefreshTTL, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))

			r.Get("/profile", profile.New(logger, entitlementService, cacheRedis).ServeHTTP)
			r.Get("/logout", logout.New(logger, authService).ServeHTTP)
			r.With(middlewarectx.RequireRole(logger,
				models.RoleUser, models.RoleTeacher, models.RoleAdmin)).
				Post("/change-password", change.New(logger, authService).ServeHTTP)

			r.Get("/payments/subscribe", subscribe.New(logger, entitlementService).ServeHTTP)
			r.Post("/payments/verify/subscription", verifysubscription.New(logger, entitlementService).ServeHTTP)
			r.Get("/payments/unsubscribe", unsubscribe.New(logger, entitlementService).ServeHTTP)
			r.Post("/payments/order", order.New(logger, entitlementService).ServeHTTP)
			r.Post("/payments/verify/order", verifyorder.New(logger, entitlementService).ServeHTTP)
			r.With(middlewarectx.RequireRole(logger, models.RoleAdmin)).
				Get("/payments", paymentlist.New(logger, entitlementService).ServeHTTP)

			r.With(middlewarectx.RequireEntitlement(logger)).
				Get("/courses/{courseId}/access", access.New(logger).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

// Package subscriptionmanager предоставляет маршруты для основного приложения.
package subscriptionmanager

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/admin/removeuser"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/admin/stats"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/admin/translog"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/auth/verify"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/cancel"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/create"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/renew"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/status"
	"github.com/magabrotheeeer/subscription-manager/internal/http/middlewarectx"
	directoryservice "github.com/magabrotheeeer/subscription-manager/internal/services/directory"
	ledgerservice "github.com/magabrotheeeer/subscription-manager/internal/services/ledger"
	sessionservice "github.com/magabrotheeeer/subscription-manager/internal/services/session"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	directoryService *directoryservice.DirectoryService,
	ledgerService *ledgerservice.LedgerService,
	sessionService *sessionservice.SessionService,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, directoryService).ServeHTTP)
		r.Post("/verify", verify.New(logger, directoryService).ServeHTTP)
		r.Post("/login", login.New(logger, sessionService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(sessionService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/logout", logout.New(logger, sessionService).ServeHTTP)
			r.Post("/subscriptions", create.New(logger, ledgerService).ServeHTTP)
			r.Put("/subscriptions", renew.New(logger, ledgerService).ServeHTTP)
			r.Delete("/subscriptions", cancel.New(logger, ledgerService).ServeHTTP)
			r.Get("/subscriptions/status", status.New(logger, ledgerService).ServeHTTP)

			// Административная группа
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminMiddleware(logger))
				r.Get("/admin/stats", stats.New(logger, ledgerService, directoryService).ServeHTTP)
				r.Get("/admin/translog", translog.New(logger, ledgerService).ServeHTTP)
				r.Delete("/admin/users/{username}", removeuser.New(logger, directoryService, ledgerService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kodbank/kodbank/internal/adapter/http/handler"
	"github.com/kodbank/kodbank/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	TransactionHandler *handler.TransactionHandler
	AdminHandler       *handler.AdminHandler
	HealthHandler      *handler.HealthHandler

	// Auth is the token-validating middleware guarding /api/v1.
	Auth func(http.Handler) http.Handler

	Logging  *middleware.LoggingMiddleware
	Metrics  *middleware.MetricsMiddleware
	Recovery *middleware.RecoveryMiddleware
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.Logging != nil {
		r.Use(cfg.Logging.Wrap)
	}
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Wrap)
	}
	if cfg.Recovery != nil {
		r.Use(cfg.Recovery.Wrap)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cfg.Auth)

		// Transactions on the caller's own account
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/deposit", cfg.TransactionHandler.Deposit)
			r.Post("/withdraw", cfg.TransactionHandler.Withdraw)
			r.Post("/transfer", cfg.TransactionHandler.Transfer)
			r.Post("/transfer/challenge", cfg.TransactionHandler.RequestChallenge)
			r.Get("/history", cfg.TransactionHandler.History)
		})

		// Administration
		r.Route("/admin", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireGlobalViewer)
				r.Get("/stats", cfg.AdminHandler.Stats)
				r.Get("/accounts", cfg.AdminHandler.ListAccounts)
				r.Get("/transactions", cfg.AdminHandler.ListTransactions)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/audit", cfg.AdminHandler.AuditTrail)
				r.Post("/accounts/{id}/freeze", cfg.AdminHandler.SetFrozen)
				r.Put("/accounts/{id}/balance", cfg.AdminHandler.AdjustBalance)
				r.Put("/accounts/{id}/role", cfg.AdminHandler.Promote)
			})
		})
	})

	return r
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lost-found-api/internal/config"
	"github.com/lost-found-api/internal/transport/http/handler"
	appmiddleware "github.com/lost-found-api/internal/transport/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.Verifier)

	// 2 reports/second, burst of 10, per client IP.
	postItemRL := appmiddleware.NewRateLimiter(rate.Limit(2), 10, cfg.TrustedProxies...)

	healthH := handler.NewHealthHandler(deps.Storage)
	itemH := handler.NewItemHandler(deps.Items, cfg.MaxImageBytes)
	matchH := handler.NewMatchHandler(deps.Matches)
	notifH := handler.NewNotificationHandler(deps.Notifications)
	userH := handler.NewUserHandler(deps.Users)

	// ── Public routes (no auth) ──────────────────────────────────────────
	r.Get("/health-check/{action}", healthH.Ping)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/items", itemH.List)
	r.Get("/items/{id}", itemH.Get)
	r.Get("/users/{id}", userH.Get)

	// ── Authenticated routes ─────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(authMw)

		r.With(postItemRL.Limit).Post("/items", itemH.Create)
		r.Post("/users/me", userH.UpsertMe)
		r.Get("/notifications", notifH.List)
		r.Put("/notifications/{id}/read", notifH.MarkRead)
		r.Get("/matches", matchH.List)
		r.Put("/matches/{id}/status", matchH.UpdateStatus)
	})

	return r
}

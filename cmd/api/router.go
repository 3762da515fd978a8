package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xavierca1/agency-leads/internal/infra/http/handlers"
	"github.com/xavierca1/agency-leads/internal/infra/http/middleware"
)

type routerDeps struct {
	Logger         *zap.Logger
	AllowedOrigins []string
	AdminToken     string

	Lead        *handlers.LeadHandler
	Newsletter  *handlers.NewsletterHandler
	Admin       *handlers.AdminHandler
	Health      *handlers.HealthHandler
	RateLimiter *handlers.RateLimiter
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", d.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.With(d.RateLimiter.Middleware).Post("/lead", d.Lead.SubmitLead)
		r.With(d.RateLimiter.Middleware).Post("/newsletter", d.Newsletter.Subscribe)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminAuth(d.AdminToken))
			r.Mount("/", d.Admin.Routes())
		})
	})

	return r
}

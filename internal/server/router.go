// Package server assembles the HTTP router for the checkout backend.
package server

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/groupclass/checkout/internal/contextkeys"
	"github.com/groupclass/checkout/internal/handler"
	"github.com/groupclass/checkout/internal/metrics"
	appMiddleware "github.com/groupclass/checkout/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Options holds everything the router serves. Signups is nil when no
// database is configured, in which case receipts are not routed.
type Options struct {
	Logger      zerolog.Logger
	Metrics     *metrics.Collector
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
	// TrustProxy takes the client address from True-Client-IP, X-Real-IP or
	// X-Forwarded-For. Enable only behind a proxy that sets them.
	TrustProxy bool

	GlobalLimiter    *appMiddleware.RateLimiter
	SubscribeLimiter *appMiddleware.RateLimiter

	Health    *handler.HealthHandler
	Catalog   *handler.CatalogHandler
	Subscribe *handler.SubscribeHandler
	Signups   *handler.SignupHandler
}

// NewRouter builds the chi router.
func NewRouter(o Options) chi.Router {
	r := chi.NewRouter()
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	// Global middleware
	if o.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(appMiddleware.Logger(o.Logger, o.Metrics))
	r.Use(appMiddleware.Recovery)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: o.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", contextkeys.RequestIDHeader},
		ExposedHeaders: []string{contextkeys.RequestIDHeader},
		MaxAge:         300,
	}))
	if o.GlobalLimiter != nil {
		r.Use(o.GlobalLimiter.Middleware())
	}

	r.Get("/health", o.Health.Check)
	if o.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(o.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/api/countries", o.Catalog.Countries)
	r.Get("/api/countries/{code}/regions", o.Catalog.Regions)
	r.Get("/api/phone/format", o.Catalog.FormatPhone)
	r.Get("/api/checkout/config", o.Catalog.Config)

	// Checkout (strict per-IP limit)
	r.Group(func(r chi.Router) {
		if o.SubscribeLimiter != nil {
			r.Use(o.SubscribeLimiter.Middleware())
		}
		r.Post("/api/subscribe", o.Subscribe.Subscribe)
	})

	if o.Signups != nil {
		r.Get("/api/signups/{subscriptionId}", o.Signups.Receipt)
	}

	return r
}

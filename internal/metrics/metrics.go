// Package metrics provides Prometheus metrics for the checkout backend.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the checkout metrics.
type Collector struct {
	Checkouts        *prometheus.CounterVec
	BillingCalls     *prometheus.CounterVec
	BillingDuration  *prometheus.HistogramVec
	Compensations    *prometheus.CounterVec
	RequestsTotal    *prometheus.CounterVec
	RequestsInFlight prometheus.Gauge
	RateLimited      *prometheus.CounterVec
}

// NewWithRegistry registers the collector on reg.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		Checkouts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "checkout",
				Name:      "subscriptions_total",
				Help:      "Subscription checkouts by outcome and failing step",
			},
			[]string{"outcome", "step"},
		),
		BillingCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "checkout",
				Name:      "billing_calls_total",
				Help:      "Calls to the billing provider",
			},
			[]string{"operation", "result"},
		),
		BillingDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "checkout",
				Name:      "billing_call_duration_seconds",
				Help:      "Billing provider call latency",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
		Compensations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "checkout",
				Name:      "compensations_total",
				Help:      "Rollbacks of partially created billing records",
			},
			[]string{"result"},
		),
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "checkout",
				Name:      "http_requests_total",
				Help:      "HTTP requests by method and status",
			},
			[]string{"method", "status"},
		),
		RequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "checkout",
				Name:      "http_requests_in_flight",
				Help:      "HTTP requests currently being served",
			},
		),
		RateLimited: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "checkout",
				Name:      "rate_limited_total",
				Help:      "Requests rejected by a rate limiter",
			},
			[]string{"limiter"},
		),
	}
}

// ObserveBillingCall records one provider call.
func (c *Collector) ObserveBillingCall(operation string, started time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.BillingCalls.WithLabelValues(operation, result).Inc()
	c.BillingDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

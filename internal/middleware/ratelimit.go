package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/groupclass/checkout/internal/handler"
	"github.com/groupclass/checkout/internal/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL   = 3 * time.Minute
	limiterSweepTick = time.Minute
)

// RateLimiter throttles requests per client IP with a token bucket.
type RateLimiter struct {
	name    string
	limit   rate.Limit
	burst   int
	metrics *metrics.Collector

	mu      sync.Mutex
	clients map[string]*client
	stop    chan struct{}
	once    sync.Once
}

type client struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows rps requests per second per client with the given
// burst. name labels rejections in m, which may be nil.
func NewRateLimiter(name string, rps float64, burst int, m *metrics.Collector) *RateLimiter {
	rl := &RateLimiter{
		name:    name,
		limit:   rate.Limit(rps),
		burst:   burst,
		metrics: m,
		clients: make(map[string]*client),
		stop:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Middleware rejects over-limit requests with 429.
func (rl *RateLimiter) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := extractClientIP(r)
			if !rl.allow(ip) {
				if rl.metrics != nil {
					rl.metrics.RateLimited.WithLabelValues(rl.name).Inc()
				}
				zerolog.Ctx(r.Context()).Debug().
					Str("limiter", rl.name).
					Str("client_ip", ip).
					Msg("rate limited")
				w.Header().Set("Retry-After", "1")
				handler.JSON(w, http.StatusTooManyRequests, map[string]string{
					"error": "Too many requests, please try again shortly.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	c, ok := rl.clients[ip]
	if !ok {
		c = &client{bucket: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = time.Now()
	rl.mu.Unlock()
	return c.bucket.Allow()
}

// Close stops the idle-client sweeper. It is safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(limiterSweepTick)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, c := range rl.clients {
				if now.Sub(c.lastSeen) > limiterIdleTTL {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// extractClientIP returns the connection address without its port. Proxy
// headers are honored only when the router installs chi's RealIP, which
// rewrites RemoteAddr before this middleware runs.
func extractClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

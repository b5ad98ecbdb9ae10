package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/groupclass/checkout/internal/contextkeys"
	"github.com/groupclass/checkout/internal/metrics"
	"github.com/rs/zerolog"
)

// Logger assigns each request an id, attaches a request-scoped zerolog logger
// to its context and logs method, path, status, and duration on completion.
// An incoming X-Request-ID header is reused.
func Logger(logger zerolog.Logger, m *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get(contextkeys.RequestIDHeader)
			if id == "" || len(id) > 64 {
				id = uuid.New().String()
			}
			w.Header().Set(contextkeys.RequestIDHeader, id)

			reqLog := logger.With().Str("request_id", id).Logger()
			ctx := context.WithValue(r.Context(), contextkeys.RequestID, id)
			ctx = reqLog.WithContext(ctx)

			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()

			// Wrap response writer to capture status code
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r.WithContext(ctx))

			m.RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(ww.status)).Inc()

			ev := reqLog.Info()
			if ww.status >= http.StatusInternalServerError {
				ev = reqLog.Warn()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.status).
				Int("bytes", ww.bytes).
				Dur("duration", time.Since(start).Round(time.Millisecond)).
				Msg("request")
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

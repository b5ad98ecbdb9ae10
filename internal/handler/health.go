package handler

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthHandler handles the health check endpoint.
type HealthHandler struct {
	db      *pgxpool.Pool
	billing string
}

// NewHealthHandler creates a new HealthHandler. db is nil when signups are
// not recorded.
func NewHealthHandler(db *pgxpool.Pool, billingProvider string) *HealthHandler {
	return &HealthHandler{db: db, billing: billingProvider}
}

// Check handles GET /health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"billing": h.billing,
	}

	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			status["database"] = "error"
			status["status"] = "degraded"
		} else {
			status["database"] = "ok"
		}
	}

	code := http.StatusOK
	if status["status"] == "degraded" {
		code = http.StatusServiceUnavailable
	}

	JSON(w, code, status)
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/groupclass/checkout/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 64 << 10

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error().Err(err).Msg("failed to encode JSON response")
		}
	}
}

// Error writes {"error": msg} using the AppError status, or a generic 500.
// Causes of server-side AppErrors are logged at debug; the caller logs them.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	if appErr, ok := domain.AsAppError(err); ok {
		if appErr.Code >= http.StatusInternalServerError && appErr.Err != nil {
			zerolog.Ctx(r.Context()).Debug().Err(appErr.Err).Int("status", appErr.Code).Msg("request failed")
		}
		JSON(w, appErr.Code, map[string]string{"error": appErr.Message})
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("unhandled error")
	JSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

// DecodeJSON decodes a JSON request body into the given struct.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrBadRequest("invalid JSON body")
	}
	return nil
}

// MethodNotAllowed answers requests to a known path with an unsupported method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Error(w, r, domain.ErrMethodNotAllowed("Method not allowed"))
}

// NotFound answers requests to unknown paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	Error(w, r, domain.ErrNotFound("not found"))
}

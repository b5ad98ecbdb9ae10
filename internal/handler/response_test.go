package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/groupclass/checkout/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"bad request", domain.ErrBadRequest("Missing required fields"), http.StatusBadRequest, `{"error":"Missing required fields"}`},
		{"collaborator", domain.ErrCollaborator("Your card was declined.", errors.New("charge: declined")), http.StatusInternalServerError, `{"error":"Your card was declined."}`},
		{"method", domain.ErrMethodNotAllowed("Method not allowed"), http.StatusMethodNotAllowed, `{"error":"Method not allowed"}`},
		{"unknown", errors.New("pq: connection refused"), http.StatusInternalServerError, `{"error":"internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct{ Email string }

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"Email":"a@b.c"}`))
	assert.NoError(t, DecodeJSON(httptest.NewRecorder(), req, &v))
	assert.Equal(t, "a@b.c", v.Email)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	err := DecodeJSON(httptest.NewRecorder(), req, &v)
	appErr, ok := domain.AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)

	big := `{"Email":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	assert.Error(t, DecodeJSON(httptest.NewRecorder(), req, &v))
}

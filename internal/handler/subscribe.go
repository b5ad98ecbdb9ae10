package handler

import (
	"net/http"

	"github.com/groupclass/checkout/internal/domain"
	"github.com/groupclass/checkout/internal/service"
)

// IdempotencyKeyHeader lets a client mark retries of the same checkout.
const IdempotencyKeyHeader = "Idempotency-Key"

// SubscribeHandler serves the checkout endpoint.
type SubscribeHandler struct {
	svc *service.SubscriptionService
}

func NewSubscribeHandler(svc *service.SubscriptionService) *SubscribeHandler {
	return &SubscribeHandler{svc: svc}
}

// Subscribe handles POST /api/subscribe.
func (h *SubscribeHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req domain.SubscribeRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		Error(w, r, err)
		return
	}

	req.IdempotencyKey = r.Header.Get(IdempotencyKeyHeader)

	resp, err := h.svc.Subscribe(r.Context(), &req)
	if err != nil {
		Error(w, r, err)
		return
	}

	JSON(w, http.StatusOK, resp)
}

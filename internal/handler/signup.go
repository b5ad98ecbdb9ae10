package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/groupclass/checkout/internal/domain"
	"github.com/rs/zerolog"
)

// SignupFinder looks up recorded signups.
type SignupFinder interface {
	FindBySubscriptionID(ctx context.Context, subscriptionID string) (*domain.Signup, error)
}

// SignupHandler serves signup receipts.
type SignupHandler struct {
	signups SignupFinder
}

func NewSignupHandler(signups SignupFinder) *SignupHandler {
	return &SignupHandler{signups: signups}
}

type receiptResponse struct {
	SubscriptionID  string    `json:"subscriptionId"`
	PaymentIntentID string    `json:"paymentIntentId"`
	Membership      string    `json:"membership"`
	AmountCents     int64     `json:"amountCents"`
	Currency        string    `json:"currency"`
	BillingAnchor   time.Time `json:"billingAnchor"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Receipt handles GET /api/signups/{subscriptionId}. Contact details are not
// returned.
func (h *SignupHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "subscriptionId")

	s, err := h.signups.FindBySubscriptionID(r.Context(), id)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("subscription_id", id).Msg("failed to load signup")
		Error(w, r, domain.ErrInternal("failed to load signup", err))
		return
	}
	if s == nil {
		Error(w, r, domain.ErrNotFound("signup not found"))
		return
	}

	JSON(w, http.StatusOK, receiptResponse{
		SubscriptionID:  s.SubscriptionID,
		PaymentIntentID: s.PaymentIntentID,
		Membership:      s.Membership,
		AmountCents:     s.AmountCents,
		Currency:        s.Currency,
		BillingAnchor:   s.BillingAnchor,
		CreatedAt:       s.CreatedAt,
	})
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/groupclass/checkout/internal/billing"
	"github.com/groupclass/checkout/internal/contextkeys"
	"github.com/groupclass/checkout/internal/domain"
	"github.com/groupclass/checkout/internal/metrics"
	"github.com/groupclass/checkout/pkg/payment"
	"github.com/rs/zerolog"
)

// Billing steps, used for metrics labels and error wrapping.
const (
	StepValidate           = "validate"
	StepCreateCustomer     = "create_customer"
	StepCreateSubscription = "create_subscription"
	StepCharge             = "charge"
	stepRollback           = "delete_customer"
)

const (
	defaultCallTimeout = 15 * time.Second
	// Stripe accepts keys up to 255 characters; the step suffix needs room.
	maxIdempotencyKeyLen = 200
)

// SignupRecorder stores completed checkouts. Implemented by
// repository.SignupRepository.
type SignupRecorder interface {
	Create(ctx context.Context, s *domain.Signup) error
}

// SubscriptionConfig holds the fixed parameters of the membership checkout.
type SubscriptionConfig struct {
	Membership domain.Membership
	// CallTimeout bounds each billing provider call.
	CallTimeout time.Duration
	// Compensate deletes the customer when a later step definitely failed.
	Compensate bool
}

// SubscriptionService creates the customer, subscription and signup charge
// for one checkout.
type SubscriptionService struct {
	gateway   payment.Gateway
	scheduler *billing.Scheduler
	signups   SignupRecorder
	metrics   *metrics.Collector
	cfg       SubscriptionConfig
	validate  *validator.Validate
	log       zerolog.Logger
}

// NewSubscriptionService creates a SubscriptionService. signups may be nil.
func NewSubscriptionService(
	gateway payment.Gateway,
	scheduler *billing.Scheduler,
	signups SignupRecorder,
	m *metrics.Collector,
	cfg SubscriptionConfig,
	logger zerolog.Logger,
) *SubscriptionService {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	return &SubscriptionService{
		gateway:   gateway,
		scheduler: scheduler,
		signups:   signups,
		metrics:   m,
		cfg:       cfg,
		validate:  validator.New(),
		log:       logger.With().Str("component", "subscription").Logger(),
	}
}

// Subscribe runs the checkout. The three provider calls are strictly
// sequential; the first failure stops the sequence and its provider message
// is returned to the caller.
func (s *SubscriptionService) Subscribe(ctx context.Context, req *domain.SubscribeRequest) (*domain.SubscribeResponse, error) {
	log := s.logger(ctx)

	if err := s.validateRequest(req); err != nil {
		s.metrics.Checkouts.WithLabelValues("rejected", StepValidate).Inc()
		return nil, err
	}

	// Provider idempotency keys derive from the checkout, so a resubmission
	// replays the first attempt instead of charging again.
	key := checkoutKey(req)
	log = log.With().Str("checkout_key", key).Logger()

	customerID, err := s.call(ctx, StepCreateCustomer, func(ctx context.Context) (string, error) {
		return s.gateway.CreateCustomer(ctx, payment.CustomerParams{
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
			Address: payment.Address{
				Line1:      req.Address.Line1,
				Line2:      req.Address.Line2,
				City:       req.Address.City,
				PostalCode: req.Address.PostalCode,
				State:      req.Address.State,
				Country:    req.Address.Country,
			},
			PaymentMethodID: req.PaymentMethodID,
			IdempotencyKey:  key + "-customer",
		})
	})
	if err != nil {
		return nil, s.fail(log, StepCreateCustomer, err)
	}

	anchor := s.scheduler.NextAnchor()

	subscriptionID, err := s.call(ctx, StepCreateSubscription, func(ctx context.Context) (string, error) {
		return s.gateway.CreateSubscription(ctx, payment.SubscriptionParams{
			CustomerID:         customerID,
			PriceID:            s.cfg.Membership.PriceID,
			BillingCycleAnchor: anchor.Unix(),
			IdempotencyKey:     key + "-subscription",
		})
	})
	if err != nil {
		if payment.KeyReused(err) {
			s.leaveInPlace(log, customerID, "", err)
		} else {
			s.compensate(ctx, log, customerID, key)
		}
		return nil, s.fail(log, StepCreateSubscription, err)
	}

	paymentIntentID, err := s.call(ctx, StepCharge, func(ctx context.Context) (string, error) {
		return s.gateway.ChargeNow(ctx, payment.ChargeParams{
			CustomerID:      customerID,
			PaymentMethodID: req.PaymentMethodID,
			AmountCents:     s.cfg.Membership.AmountCents,
			Currency:        s.cfg.Membership.Currency,
			Description:     s.cfg.Membership.Name,
			Metadata:        s.cfg.Membership.ChargeMetadata(subscriptionID),
			IdempotencyKey:  key + "-charge",
		})
	})
	if err != nil {
		if payment.Rejected(err) {
			s.compensate(ctx, log, customerID, key)
		} else {
			s.leaveInPlace(log, customerID, subscriptionID, err)
		}
		return nil, s.fail(log, StepCharge, err)
	}

	s.record(ctx, log, &domain.Signup{
		ID:              uuid.New().String(),
		CustomerID:      customerID,
		SubscriptionID:  subscriptionID,
		PaymentIntentID: paymentIntentID,
		Email:           req.Email,
		Phone:           req.Phone,
		Membership:      s.cfg.Membership.Name,
		AmountCents:     s.cfg.Membership.AmountCents,
		Currency:        s.cfg.Membership.Currency,
		BillingAnchor:   anchor,
		CreatedAt:       s.scheduler.Now(),
	})

	s.metrics.Checkouts.WithLabelValues("success", "").Inc()
	log.Info().
		Str("customer_id", customerID).
		Str("subscription_id", subscriptionID).
		Str("payment_intent_id", paymentIntentID).
		Time("billing_anchor", anchor).
		Msg("subscription created")

	return &domain.SubscribeResponse{
		Success:         true,
		SubscriptionID:  subscriptionID,
		PaymentIntentID: paymentIntentID,
	}, nil
}

func (s *SubscriptionService) validateRequest(req *domain.SubscribeRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	req.PaymentMethodID = strings.TrimSpace(req.PaymentMethodID)
	if req.Email == "" || req.PaymentMethodID == "" {
		return domain.ErrBadRequest("Missing required fields")
	}
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	if len(req.IdempotencyKey) > maxIdempotencyKeyLen {
		return domain.ErrBadRequest(fmt.Sprintf("Idempotency-Key must be at most %d characters", maxIdempotencyKeyLen))
	}
	if err := s.validate.Struct(req); err != nil {
		return domain.ErrBadRequest(formatValidationErrors(err))
	}
	return nil
}

// call runs one provider operation under its own timeout.
func (s *SubscriptionService) call(ctx context.Context, step string, fn func(context.Context) (string, error)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	started := time.Now()
	id, err := fn(ctx)
	s.metrics.ObserveBillingCall(step, started, err)
	return id, err
}

func (s *SubscriptionService) fail(log zerolog.Logger, step string, err error) error {
	s.metrics.Checkouts.WithLabelValues("failed", step).Inc()
	log.Error().Err(err).Str("step", step).Msg("checkout failed")
	return domain.ErrCollaborator(payment.Message(err), fmt.Errorf("%s: %w", step, err))
}

// compensate removes a customer left behind by a failed checkout. It runs
// detached from the request so a disconnecting client cannot interrupt it.
func (s *SubscriptionService) compensate(ctx context.Context, log zerolog.Logger, customerID, key string) {
	if !s.cfg.Compensate {
		log.Warn().Str("customer_id", customerID).Msg("leaving customer from failed checkout in place")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.CallTimeout)
	defer cancel()

	started := time.Now()
	err := s.gateway.DeleteCustomer(ctx, customerID, key+"-rollback")
	s.metrics.ObserveBillingCall(stepRollback, started, err)
	if err != nil {
		s.metrics.Compensations.WithLabelValues("error").Inc()
		log.Error().Err(err).Str("customer_id", customerID).Msg("failed to delete customer from failed checkout")
		return
	}
	s.metrics.Compensations.WithLabelValues("ok").Inc()
	log.Info().Str("customer_id", customerID).Msg("deleted customer from failed checkout")
}

// leaveInPlace skips compensation when the records may back a completed
// charge: the charge outcome is unknown, or the customer was replayed from an
// earlier checkout. Deleting the customer would cancel a paid subscription.
func (s *SubscriptionService) leaveInPlace(log zerolog.Logger, customerID, subscriptionID string, err error) {
	s.metrics.Compensations.WithLabelValues("skipped").Inc()
	log.Error().Err(err).
		Str("customer_id", customerID).
		Str("subscription_id", subscriptionID).
		Msg("billing outcome unknown, leaving customer for reconciliation")
}

// checkoutKey is the base of the provider idempotency keys. A client key
// wins; otherwise the single-use payment method identifies the checkout.
func checkoutKey(req *domain.SubscribeRequest) string {
	if req.IdempotencyKey != "" {
		return "key-" + req.IdempotencyKey
	}
	return "pm-" + req.PaymentMethodID
}

// record stores the signup. The charge has already succeeded, so a storage
// failure is logged and the checkout still reports success.
func (s *SubscriptionService) record(ctx context.Context, log zerolog.Logger, signup *domain.Signup) {
	if s.signups == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.CallTimeout)
	defer cancel()

	if err := s.signups.Create(ctx, signup); err != nil {
		log.Error().Err(err).Str("subscription_id", signup.SubscriptionID).Msg("failed to record signup")
	}
}

func (s *SubscriptionService) logger(ctx context.Context) zerolog.Logger {
	if id, ok := ctx.Value(contextkeys.RequestID).(string); ok && id != "" {
		return s.log.With().Str("request_id", id).Logger()
	}
	return s.log
}

func formatValidationErrors(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "email":
			msgs = append(msgs, "Invalid email address")
		case "required":
			msgs = append(msgs, "Missing required fields")
		default:
			msgs = append(msgs, fmt.Sprintf("Invalid %s", strings.ToLower(fe.Field())))
		}
	}
	return strings.Join(msgs, "; ")
}

// Package payment provides the billing and card-tokenization providers used
// by the checkout.
package payment

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeConfig holds Stripe configuration.
type StripeConfig struct {
	// Key is the secret key for the gateway or the publishable key for the tokenizer.
	Key string
	// Timeout bounds every HTTP round trip to Stripe.
	Timeout time.Duration
	// APIURL overrides the API base URL (stripe-mock, tests).
	APIURL string
}

func newStripeAPI(cfg StripeConfig, logger zerolog.Logger) *client.API {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	bc := &stripe.BackendConfig{
		HTTPClient: &http.Client{Timeout: timeout},
		// Writes are never retried automatically. Keys derived from the
		// checkout let a resubmission replay the original result.
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     NewStripeLogger(logger),
	}
	if cfg.APIURL != "" {
		bc.URL = stripe.String(cfg.APIURL)
	}

	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, bc),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, bc),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, bc),
	}
	return client.New(cfg.Key, backends)
}

// StripeGateway implements Gateway against the Stripe API.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway creates a gateway authenticated with the secret key.
func NewStripeGateway(cfg StripeConfig, logger zerolog.Logger) *StripeGateway {
	return &StripeGateway{api: newStripeAPI(cfg, logger)}
}

func (g *StripeGateway) Name() string { return "stripe" }

// CreateCustomer creates a customer and sets the payment method as the
// default for future invoices.
func (g *StripeGateway) CreateCustomer(ctx context.Context, p CustomerParams) (string, error) {
	params := &stripe.CustomerParams{
		Name:          stripe.String(p.Name),
		Email:         stripe.String(p.Email),
		Phone:         stripe.String(p.Phone),
		Address:       addressParams(p.Address),
		PaymentMethod: stripe.String(p.PaymentMethodID),
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(p.PaymentMethodID),
		},
	}
	params.Context = ctx
	setIdempotencyKey(&params.Params, p.IdempotencyKey)

	c, err := g.api.Customers.New(params)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// CreateSubscription subscribes the customer to a price, anchored so the
// first period is never prorated.
func (g *StripeGateway) CreateSubscription(ctx context.Context, p SubscriptionParams) (string, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(p.CustomerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(p.PriceID)},
		},
		BillingCycleAnchor: stripe.Int64(p.BillingCycleAnchor),
		ProrationBehavior:  stripe.String("none"),
		CollectionMethod:   stripe.String(string(stripe.SubscriptionCollectionMethodChargeAutomatically)),
	}
	params.Context = ctx
	setIdempotencyKey(&params.Params, p.IdempotencyKey)

	s, err := g.api.Subscriptions.New(params)
	if err != nil {
		return "", err
	}
	return s.ID, nil
}

// ChargeNow creates and confirms an off-session payment intent.
func (g *StripeGateway) ChargeNow(ctx context.Context, p ChargeParams) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(p.AmountCents),
		Currency:      stripe.String(p.Currency),
		Customer:      stripe.String(p.CustomerID),
		PaymentMethod: stripe.String(p.PaymentMethodID),
		OffSession:    stripe.Bool(true),
		Confirm:       stripe.Bool(true),
	}
	if p.Description != "" {
		params.Description = stripe.String(p.Description)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx
	setIdempotencyKey(&params.Params, p.IdempotencyKey)

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return "", err
	}
	return pi.ID, nil
}

// DeleteCustomer deletes a customer. Stripe cancels its subscriptions.
func (g *StripeGateway) DeleteCustomer(ctx context.Context, customerID, idempotencyKey string) error {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	setIdempotencyKey(&params.Params, idempotencyKey)

	_, err := g.api.Customers.Del(customerID, params)
	return err
}

// StripeTokenizer creates payment methods with a publishable key, the same
// call Stripe.js makes from the browser.
type StripeTokenizer struct {
	api *client.API
}

// NewStripeTokenizer creates a tokenizer. cfg.Key must be a publishable key.
func NewStripeTokenizer(cfg StripeConfig, logger zerolog.Logger) *StripeTokenizer {
	return &StripeTokenizer{api: newStripeAPI(cfg, logger)}
}

func (t *StripeTokenizer) CreatePaymentMethod(ctx context.Context, card Card, billing BillingDetails) (string, error) {
	params := &stripe.PaymentMethodParams{
		Type: stripe.String(string(stripe.PaymentMethodTypeCard)),
		Card: &stripe.PaymentMethodCardParams{
			Number:   stripe.String(card.Number),
			ExpMonth: stripe.Int64(card.ExpMonth),
			ExpYear:  stripe.Int64(card.ExpYear),
			CVC:      stripe.String(card.CVC),
		},
		BillingDetails: &stripe.PaymentMethodBillingDetailsParams{
			Name:    stripe.String(billing.Name),
			Email:   stripe.String(billing.Email),
			Phone:   stripe.String(billing.Phone),
			Address: addressParams(billing.Address),
		},
	}
	params.Context = ctx

	pm, err := t.api.PaymentMethods.New(params)
	if err != nil {
		return "", err
	}
	return pm.ID, nil
}

// Message returns the user-facing text of a provider error.
func Message(err error) string {
	var se *stripe.Error
	if errors.As(err, &se) && se.Msg != "" {
		return se.Msg
	}
	return err.Error()
}

// Rejected reports whether the provider refused the request outright, so it
// took no effect. Timeouts, transport errors and 5xx responses leave the
// outcome unknown and report false.
func Rejected(err error) bool {
	if errors.Is(err, ErrCardDeclined) {
		return true
	}
	var se *stripe.Error
	if !errors.As(err, &se) {
		return false
	}
	if KeyReused(err) {
		return false
	}
	if se.Type == stripe.ErrorTypeCard {
		return true
	}
	switch se.HTTPStatusCode {
	case http.StatusBadRequest, http.StatusPaymentRequired, http.StatusNotFound:
		return true
	}
	return false
}

// KeyReused reports whether the provider refused an idempotency key that an
// earlier request with different parameters already used.
func KeyReused(err error) bool {
	var se *stripe.Error
	return errors.As(err, &se) && se.Type == stripe.ErrorTypeIdempotency
}

func addressParams(a Address) *stripe.AddressParams {
	return &stripe.AddressParams{
		Line1:      stripe.String(a.Line1),
		Line2:      stripe.String(a.Line2),
		City:       stripe.String(a.City),
		State:      stripe.String(a.State),
		PostalCode: stripe.String(a.PostalCode),
		Country:    stripe.String(a.Country),
	}
}

func setIdempotencyKey(p *stripe.Params, key string) {
	if key != "" {
		p.SetIdempotencyKey(key)
	}
}

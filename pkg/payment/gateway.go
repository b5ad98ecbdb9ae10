package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Gateway defines the billing operations used by the checkout backend.
type Gateway interface {
	// Name identifies the provider.
	Name() string
	// CreateCustomer creates a customer with pm attached as its default payment method.
	CreateCustomer(ctx context.Context, p CustomerParams) (string, error)
	// CreateSubscription starts a recurring subscription for a customer.
	CreateSubscription(ctx context.Context, p SubscriptionParams) (string, error)
	// ChargeNow creates and confirms an off-session payment.
	ChargeNow(ctx context.Context, p ChargeParams) (string, error)
	// DeleteCustomer removes a customer and cancels its subscriptions.
	DeleteCustomer(ctx context.Context, customerID, idempotencyKey string) error
}

// Tokenizer exchanges card details for an opaque payment-method id.
type Tokenizer interface {
	CreatePaymentMethod(ctx context.Context, card Card, billing BillingDetails) (string, error)
}

// Address is a postal address in provider-neutral form.
type Address struct {
	Line1      string
	Line2      string
	City       string
	PostalCode string
	State      string
	Country    string
}

// CustomerParams holds the fields for CreateCustomer.
type CustomerParams struct {
	Name            string
	Email           string
	Phone           string
	Address         Address
	PaymentMethodID string
	IdempotencyKey  string
}

// SubscriptionParams holds the fields for CreateSubscription.
type SubscriptionParams struct {
	CustomerID         string
	PriceID            string
	BillingCycleAnchor int64 // epoch seconds
	IdempotencyKey     string
}

// ChargeParams holds the fields for ChargeNow.
type ChargeParams struct {
	CustomerID      string
	PaymentMethodID string
	AmountCents     int64
	Currency        string
	Description     string
	Metadata        map[string]string
	IdempotencyKey  string
}

// Card is raw card input. It is only ever handed to a Tokenizer.
type Card struct {
	Number   string
	ExpMonth int64
	ExpYear  int64
	CVC      string
}

// BillingDetails are attached to a payment method at tokenization time.
type BillingDetails struct {
	Name    string
	Email   string
	Phone   string
	Address Address
}

// ErrCardDeclined is returned by the mock providers for the decline test card.
var ErrCardDeclined = errors.New("Your card was declined.")

// DeclineCardNumber is the card number the mock providers always decline.
const DeclineCardNumber = "4000000000000002"

// MockGateway simulates a billing provider for development. Like Stripe, it
// returns the original id when an idempotency key is repeated.
type MockGateway struct {
	mu      sync.Mutex
	replays map[string]string
}

func NewMockGateway() *MockGateway {
	return &MockGateway{replays: make(map[string]string)}
}

func (g *MockGateway) Name() string { return "mock" }

func (g *MockGateway) CreateCustomer(ctx context.Context, p CustomerParams) (string, error) {
	return g.issue(p.IdempotencyKey, "cus"), nil
}

func (g *MockGateway) CreateSubscription(ctx context.Context, p SubscriptionParams) (string, error) {
	return g.issue(p.IdempotencyKey, "sub"), nil
}

func (g *MockGateway) ChargeNow(ctx context.Context, p ChargeParams) (string, error) {
	if p.AmountCents <= 0 {
		return "", fmt.Errorf("amount must be positive, got %d", p.AmountCents)
	}
	return g.issue(p.IdempotencyKey, "pi"), nil
}

func (g *MockGateway) DeleteCustomer(ctx context.Context, customerID, idempotencyKey string) error {
	return nil
}

func (g *MockGateway) issue(key, prefix string) string {
	if key == "" {
		return mockID(prefix)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.replays == nil {
		g.replays = make(map[string]string)
	}
	id, ok := g.replays[key]
	if !ok {
		id = mockID(prefix)
		g.replays[key] = id
	}
	return id
}

// MockTokenizer issues payment-method ids without contacting a provider.
type MockTokenizer struct{}

func NewMockTokenizer() *MockTokenizer {
	return &MockTokenizer{}
}

func (t *MockTokenizer) CreatePaymentMethod(ctx context.Context, card Card, billing BillingDetails) (string, error) {
	number := strings.ReplaceAll(card.Number, " ", "")
	if number == "" {
		return "", errors.New("Your card number is incomplete.")
	}
	if number == DeclineCardNumber {
		return "", ErrCardDeclined
	}
	return mockID("pm"), nil
}

func mockID(prefix string) string {
	return prefix + "_mock_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:14]
}

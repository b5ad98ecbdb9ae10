package domain

import "time"

// Address is a billing address as sent by the checkout form.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country"`
}

// SubscribeRequest is the body of POST /api/subscribe. Card data never
// appears here; PaymentMethodID is the token issued by the payment SDK.
type SubscribeRequest struct {
	Name            string  `json:"name"`
	Email           string  `json:"email" validate:"required,email"`
	Phone           string  `json:"phone"`
	PaymentMethodID string  `json:"paymentMethodId" validate:"required"`
	Address         Address `json:"address"`

	// IdempotencyKey comes from the Idempotency-Key request header.
	IdempotencyKey string `json:"-"`
}

// SubscribeResponse is returned when every billing step succeeded.
type SubscribeResponse struct {
	Success         bool   `json:"success"`
	SubscriptionID  string `json:"subscriptionId"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// Signup links the billing service identifiers created for one checkout.
// The records themselves are owned by the billing service.
type Signup struct {
	ID              string    `json:"id"`
	CustomerID      string    `json:"customerId"`
	SubscriptionID  string    `json:"subscriptionId"`
	PaymentIntentID string    `json:"paymentIntentId"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Membership      string    `json:"membership"`
	AmountCents     int64     `json:"amountCents"`
	Currency        string    `json:"currency"`
	BillingAnchor   time.Time `json:"billingAnchor"`
	CreatedAt       time.Time `json:"createdAt"`
}

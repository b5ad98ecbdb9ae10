package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/groupclass/checkout/internal/domain"
	"github.com/groupclass/checkout/internal/refdata"
	"github.com/groupclass/checkout/pkg/payment"
)

// User-facing messages.
const (
	MsgTermsRequired = "You must agree to the purchase terms."
	MsgInvalidPhone  = "Please enter a valid phone number."
	MsgSuccess       = "Subscription successful!"
)

// ErrSubmitInProgress is returned when Submit is called while a previous
// submission on the same controller has not finished.
var ErrSubmitInProgress = errors.New("submission already in progress")

// ValidationError is a local validation failure. No network call was made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// TokenizationError carries the payment SDK's message verbatim.
type TokenizationError struct {
	Err error
}

func (e *TokenizationError) Error() string { return payment.Message(e.Err) }
func (e *TokenizationError) Unwrap() error { return e.Err }

// BackendError carries the backend's error message verbatim.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string { return e.Message }

// Backend submits a checkout payload. Implemented by Client over HTTP and by
// service.SubscriptionService in-process.
type Backend interface {
	Subscribe(ctx context.Context, req *domain.SubscribeRequest) (*domain.SubscribeResponse, error)
}

// Result is a successful submission.
type Result struct {
	Message         string
	SubscriptionID  string
	PaymentIntentID string
}

// Controller runs form submissions.
type Controller struct {
	catalog   *refdata.Catalog
	tokenizer payment.Tokenizer
	backend   Backend
	validate  *validator.Validate
	loading   atomic.Bool
}

// NewController creates a Controller.
func NewController(catalog *refdata.Catalog, tokenizer payment.Tokenizer, backend Backend) *Controller {
	return &Controller{
		catalog:   catalog,
		tokenizer: tokenizer,
		backend:   backend,
		validate:  validator.New(),
	}
}

// Loading reports whether a submission is running. The submit control should
// be disabled while it is true.
func (c *Controller) Loading() bool {
	return c.loading.Load()
}

// Submit validates the form, tokenizes the card and calls the backend, in
// that order. Each step runs only if the previous one succeeded. The form is
// left populated on success.
func (c *Controller) Submit(ctx context.Context, form *Form) (*Result, error) {
	if !c.loading.CompareAndSwap(false, true) {
		return nil, ErrSubmitInProgress
	}
	defer c.loading.Store(false)

	if err := c.Check(form); err != nil {
		return nil, err
	}

	e164, err := form.Phone.E164()
	if err != nil {
		return nil, &ValidationError{Field: "phone", Message: MsgInvalidPhone}
	}

	pm, err := c.tokenizer.CreatePaymentMethod(ctx, form.Card, form.billingDetails(e164))
	if err != nil {
		return nil, &TokenizationError{Err: err}
	}

	resp, err := c.backend.Subscribe(ctx, form.payload(pm, e164))
	if err != nil {
		var be *BackendError
		if errors.As(err, &be) {
			return nil, be
		}
		if appErr, ok := domain.AsAppError(err); ok {
			return nil, &BackendError{Status: appErr.Code, Message: appErr.Message}
		}
		return nil, fmt.Errorf("submit checkout: %w", err)
	}

	return &Result{
		Message:         MsgSuccess,
		SubscriptionID:  resp.SubscriptionID,
		PaymentIntentID: resp.PaymentIntentID,
	}, nil
}

// Check runs the local validations: terms, then phone, then the required
// fields. It returns the first failure as a *ValidationError.
func (c *Controller) Check(form *Form) error {
	if !form.AcceptTerms {
		return &ValidationError{Field: "terms", Message: MsgTermsRequired}
	}
	if form.Phone == nil || !form.Phone.Valid() {
		return &ValidationError{Field: "phone", Message: MsgInvalidPhone}
	}

	trimForm(form)
	if err := c.validate.Struct(form); err != nil {
		return fieldError(err)
	}

	if c.catalog.RequiresRegion(form.Address.Country) {
		label := strings.ToLower(c.catalog.RegionLabel(form.Address.Country))
		if form.Address.State == "" {
			return &ValidationError{Field: "state", Message: fmt.Sprintf("Please select a %s.", label)}
		}
		if !c.catalog.HasRegion(form.Address.Country, form.Address.State) {
			return &ValidationError{Field: "state", Message: fmt.Sprintf("Please select a valid %s.", label)}
		}
	}
	return nil
}

var fieldNames = map[string]struct{ key, label string }{
	"Form.Contact.Name":       {"name", "full name"},
	"Form.Contact.Email":      {"email", "email address"},
	"Form.BillingName":        {"billingName", "name on card"},
	"Form.Address.Line1":      {"line1", "address"},
	"Form.Address.City":       {"city", "city"},
	"Form.Address.PostalCode": {"postalCode", "postal code"},
	"Form.Address.Country":    {"country", "country"},
}

func fieldError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	name, ok := fieldNames[fe.StructNamespace()]
	if !ok {
		name.key, name.label = strings.ToLower(fe.Field()), strings.ToLower(fe.Field())
	}
	if fe.Tag() == "email" {
		return &ValidationError{Field: name.key, Message: "Please enter a valid email address."}
	}
	return &ValidationError{Field: name.key, Message: fmt.Sprintf("Please enter your %s.", name.label)}
}

func trimForm(f *Form) {
	f.Contact.Name = strings.TrimSpace(f.Contact.Name)
	f.Contact.Email = strings.TrimSpace(f.Contact.Email)
	f.BillingName = strings.TrimSpace(f.BillingName)
	f.Address.Line1 = strings.TrimSpace(f.Address.Line1)
	f.Address.Line2 = strings.TrimSpace(f.Address.Line2)
	f.Address.City = strings.TrimSpace(f.Address.City)
	f.Address.PostalCode = strings.TrimSpace(f.Address.PostalCode)
	f.Address.State = strings.TrimSpace(f.Address.State)
}

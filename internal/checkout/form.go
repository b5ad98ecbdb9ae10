// Package checkout is the UI-independent core of the membership checkout
// form: field state, local validation and the submission sequence.
package checkout

import (
	"strings"

	"github.com/groupclass/checkout/internal/domain"
	"github.com/groupclass/checkout/internal/phone"
	"github.com/groupclass/checkout/pkg/payment"
)

// Contact is the contact section of the form.
type Contact struct {
	Name  string `validate:"required"`
	Email string `validate:"required,email"`
}

// Address is the billing address section. State is validated separately
// because it is only required for countries with a region list.
type Address struct {
	Line1      string `validate:"required"`
	Line2      string
	City       string `validate:"required"`
	PostalCode string `validate:"required"`
	State      string
	Country    string `validate:"required"`
}

// Form is the state of one checkout form.
type Form struct {
	Contact     Contact
	Phone       *phone.Field
	BillingName string `validate:"required"`
	Card        payment.Card
	Address     Address
	AcceptTerms bool
}

// NewForm creates an empty form with the phone and billing countries set to
// country.
func NewForm(f phone.Formatter, country string) *Form {
	return &Form{
		Phone:   phone.NewField(f, country),
		Address: Address{Country: country},
	}
}

// SetBillingCountry changes the billing country. A region picked for the
// previous country no longer applies and is cleared.
func (f *Form) SetBillingCountry(country string) {
	if !strings.EqualFold(country, f.Address.Country) {
		f.Address.State = ""
	}
	f.Address.Country = strings.ToUpper(country)
}

func (f *Form) billingDetails(e164 string) payment.BillingDetails {
	return payment.BillingDetails{
		Name:    f.BillingName,
		Email:   f.Contact.Email,
		Phone:   e164,
		Address: payment.Address(f.Address),
	}
}

func (f *Form) payload(paymentMethodID, e164 string) *domain.SubscribeRequest {
	return &domain.SubscribeRequest{
		Name:            f.Contact.Name,
		Email:           f.Contact.Email,
		Phone:           e164,
		PaymentMethodID: paymentMethodID,
		Address:         domain.Address(f.Address),
	}
}

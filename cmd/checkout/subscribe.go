package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/groupclass/checkout/internal/checkout"
	"github.com/groupclass/checkout/pkg/payment"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var subscribeCmd = &cobra.Command{
	Use:   "subscribe",
	Short: "Fill in the checkout form and submit it",
	Long: `Subscribe tokenizes the card with the payment provider and posts the
checkout to the backend.

With --mock the card is tokenized locally; card number 4000000000000002 is
declined.

Example:
  checkout subscribe --mock --name "Ada Lovelace" --email ada@example.com \
    --phone-country US --phone 2015550123 \
    --card 4242424242424242 --exp 12/30 --cvc 123 \
    --line1 "1 Main St" --city Springfield --postal-code 62701 \
    --state IL --country US --accept-terms`,
	RunE: runSubscribe,
}

type subscribeFlags struct {
	backend        string
	publishableKey string
	mock           bool
	timeout        time.Duration

	name         string
	email        string
	phoneCountry string
	phone        string
	billingName  string

	card string
	exp  string
	cvc  string

	line1      string
	line2      string
	city       string
	postalCode string
	state      string
	country    string

	acceptTerms bool
}

var sub subscribeFlags

func init() {
	rootCmd.AddCommand(subscribeCmd)

	f := subscribeCmd.Flags()
	f.StringVar(&sub.backend, "backend", envOr("CHECKOUT_BACKEND_URL", "http://localhost:4001"), "checkout backend base URL")
	f.StringVar(&sub.publishableKey, "publishable-key", envOr("STRIPE_PUBLISHABLE_KEY", ""), "Stripe publishable key")
	f.BoolVar(&sub.mock, "mock", false, "tokenize cards locally instead of calling Stripe")
	f.DurationVar(&sub.timeout, "timeout", 90*time.Second, "overall submission timeout")

	f.StringVar(&sub.name, "name", "", "full name")
	f.StringVar(&sub.email, "email", "", "email address")
	f.StringVar(&sub.phoneCountry, "phone-country", "US", "phone country (ISO code)")
	f.StringVar(&sub.phone, "phone", "", "phone number, digits in national format")
	f.StringVar(&sub.billingName, "billing-name", "", "name on card (defaults to --name)")

	f.StringVar(&sub.card, "card", "", "card number")
	f.StringVar(&sub.exp, "exp", "", "card expiry as MM/YY")
	f.StringVar(&sub.cvc, "cvc", "", "card security code")

	f.StringVar(&sub.line1, "line1", "", "address line 1")
	f.StringVar(&sub.line2, "line2", "", "address line 2")
	f.StringVar(&sub.city, "city", "", "city")
	f.StringVar(&sub.postalCode, "postal-code", "", "postal code")
	f.StringVar(&sub.state, "state", "", "state, province or region")
	f.StringVar(&sub.country, "country", "US", "billing country (ISO code)")

	f.BoolVar(&sub.acceptTerms, "accept-terms", false, "agree to the purchase terms")
}

func runSubscribe(cmd *cobra.Command, args []string) error {
	catalog, formatter, err := newFormatter()
	if err != nil {
		return err
	}

	var tokenizer payment.Tokenizer
	if sub.mock {
		tokenizer = payment.NewMockTokenizer()
	} else {
		if sub.publishableKey == "" {
			return errors.New("--publishable-key or STRIPE_PUBLISHABLE_KEY is required without --mock")
		}
		tokenizer = payment.NewStripeTokenizer(payment.StripeConfig{Key: sub.publishableKey}, zerolog.Nop())
	}

	month, year, err := parseExpiry(sub.exp)
	if err != nil {
		return err
	}

	form := checkout.NewForm(formatter, sub.phoneCountry)
	form.Phone.Input(sub.phone)
	form.Contact = checkout.Contact{Name: sub.name, Email: sub.email}
	form.BillingName = sub.billingName
	if form.BillingName == "" {
		form.BillingName = sub.name
	}
	form.Card = payment.Card{Number: sub.card, ExpMonth: month, ExpYear: year, CVC: sub.cvc}
	form.SetBillingCountry(sub.country)
	form.Address.Line1 = sub.line1
	form.Address.Line2 = sub.line2
	form.Address.City = sub.city
	form.Address.PostalCode = sub.postalCode
	form.Address.State = strings.ToUpper(sub.state)
	form.AcceptTerms = sub.acceptTerms

	ctrl := checkout.NewController(catalog, tokenizer, checkout.NewClient(sub.backend, sub.timeout))

	ctx, cancel := submitContext(cmd.Context(), sub.timeout)
	defer cancel()
	res, err := ctrl.Submit(ctx, form)
	if err != nil {
		var verr *checkout.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%s (%s)", verr.Message, verr.Field)
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.Message)
	fmt.Fprintf(out, "subscription:   %s\n", res.SubscriptionID)
	fmt.Fprintf(out, "payment intent: %s\n", res.PaymentIntentID)
	return nil
}

// submitContext bounds the whole submission, tokenization included.
func submitContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

// parseExpiry reads MM/YY or MM/YYYY.
func parseExpiry(s string) (int64, int64, error) {
	if s == "" {
		return 0, 0, nil
	}
	mm, yy, ok := strings.Cut(s, "/")
	if !ok {
		return 0, 0, fmt.Errorf("--exp must be MM/YY, got %q", s)
	}
	month, err := strconv.ParseInt(strings.TrimSpace(mm), 10, 64)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("--exp month must be 01-12, got %q", mm)
	}
	year, err := strconv.ParseInt(strings.TrimSpace(yy), 10, 64)
	if err != nil || year < 0 {
		return 0, 0, fmt.Errorf("--exp year is invalid: %q", yy)
	}
	if year < 100 {
		year += 2000
	}
	return month, year, nil
}

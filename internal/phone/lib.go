package phone

import (
	"fmt"
	"strings"

	"github.com/groupclass/checkout/internal/refdata"
	"github.com/nyaruka/phonenumbers"
)

// maxLibDigits bounds national input; E.164 numbers carry at most 15 digits.
const maxLibDigits = 15

// LibFormatter formats and validates with libphonenumber metadata instead of
// a fixed placeholder, so numbers of varying length are accepted where the
// numbering plan allows them.
type LibFormatter struct {
	catalog *refdata.Catalog
}

// NewLibFormatter creates a LibFormatter. The catalog supplies fallback
// placeholders for regions libphonenumber has no example for.
func NewLibFormatter(catalog *refdata.Catalog) *LibFormatter {
	return &LibFormatter{catalog: catalog}
}

func (f *LibFormatter) Kind() string { return KindLibphonenumber }

func (f *LibFormatter) OnCountryChange(country string) string {
	region := strings.ToUpper(strings.TrimSpace(country))
	if ex := phonenumbers.GetExampleNumberForType(region, phonenumbers.MOBILE); ex != nil {
		return phonenumbers.Format(ex, phonenumbers.NATIONAL)
	}
	return f.catalog.Placeholder(country)
}

func (f *LibFormatter) Format(country, raw string) string {
	digits := Digits(raw)
	if digits == "" {
		return ""
	}
	if len(digits) > maxLibDigits {
		digits = digits[:maxLibDigits]
	}

	num, err := phonenumbers.Parse(digits, strings.ToUpper(strings.TrimSpace(country)))
	if err != nil {
		return digits
	}
	return phonenumbers.Format(num, phonenumbers.NATIONAL)
}

func (f *LibFormatter) Validate(country, raw string) bool {
	_, ok := f.parse(country, raw)
	return ok
}

func (f *LibFormatter) Normalize(country, raw string) (string, error) {
	if _, ok := f.catalog.Lookup(country); !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCountry, country)
	}
	num, ok := f.parse(country, raw)
	if !ok {
		return "", ErrInvalidNumber
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func (f *LibFormatter) parse(country, raw string) (*phonenumbers.PhoneNumber, bool) {
	digits := Digits(raw)
	if digits == "" {
		return nil, false
	}
	region := strings.ToUpper(strings.TrimSpace(country))
	num, err := phonenumbers.Parse(digits, region)
	if err != nil {
		return nil, false
	}
	return num, phonenumbers.IsValidNumberForRegion(num, region)
}

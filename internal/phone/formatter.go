package phone

import (
	"fmt"
	"strings"

	"github.com/groupclass/checkout/internal/refdata"
)

// Formatter kinds accepted by New.
const (
	KindPlaceholder    = "placeholder"
	KindLibphonenumber = "libphonenumber"
)

// Formatter is the capability set a checkout form needs from a phone input.
type Formatter interface {
	// Kind names the implementation.
	Kind() string
	// OnCountryChange returns the placeholder to show for a newly selected country.
	OnCountryChange(country string) string
	// Format renders raw input for display.
	Format(country, raw string) string
	// Validate reports whether raw is a complete number for country.
	Validate(country, raw string) bool
	// Normalize returns the number as +<dial><national digits>.
	Normalize(country, raw string) (string, error)
}

// New returns the formatter registered under kind. An empty kind selects the
// placeholder formatter.
func New(kind string, catalog *refdata.Catalog) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindPlaceholder:
		return NewPlaceholderFormatter(catalog), nil
	case KindLibphonenumber:
		return NewLibFormatter(catalog), nil
	default:
		return nil, fmt.Errorf("unknown phone formatter %q", kind)
	}
}

// PlaceholderFormatter formats against the placeholder stored for each
// country in the reference catalog.
type PlaceholderFormatter struct {
	catalog *refdata.Catalog
}

// NewPlaceholderFormatter creates a PlaceholderFormatter.
func NewPlaceholderFormatter(catalog *refdata.Catalog) *PlaceholderFormatter {
	return &PlaceholderFormatter{catalog: catalog}
}

func (f *PlaceholderFormatter) Kind() string { return KindPlaceholder }

func (f *PlaceholderFormatter) OnCountryChange(country string) string {
	return f.catalog.Placeholder(country)
}

func (f *PlaceholderFormatter) Format(country, raw string) string {
	return Format(raw, f.catalog.Placeholder(country))
}

func (f *PlaceholderFormatter) Validate(country, raw string) bool {
	return Validate(raw, f.catalog.Placeholder(country))
}

func (f *PlaceholderFormatter) Normalize(country, raw string) (string, error) {
	p, ok := f.catalog.Lookup(country)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCountry, country)
	}
	if !Validate(raw, p.Placeholder) {
		return "", ErrInvalidNumber
	}
	return Normalize(p.Dial, raw), nil
}

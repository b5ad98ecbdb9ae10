package phone

import (
	"testing"

	"github.com/groupclass/checkout/internal/refdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c := refdata.Default()

	f, err := New("", c)
	require.NoError(t, err)
	assert.Equal(t, KindPlaceholder, f.Kind())

	f, err = New("LibPhoneNumber", c)
	require.NoError(t, err)
	assert.Equal(t, KindLibphonenumber, f.Kind())

	_, err = New("widget", c)
	assert.ErrorContains(t, err, `unknown phone formatter "widget"`)
}

func TestPlaceholderFormatter(t *testing.T) {
	f := NewPlaceholderFormatter(refdata.Default())

	assert.Equal(t, "(201) 555-0123", f.OnCountryChange("US"))
	assert.Equal(t, "(201) 555-0123", f.Format("US", "2015550123"))
	assert.True(t, f.Validate("US", "2015550123"))
	assert.False(t, f.Validate("US", "201555"))

	assert.Equal(t, "7400 123456", f.Format("GB", "7400123456"))

	// Kosovo has no placeholder: input is passed through and never validates.
	assert.Equal(t, "", f.OnCountryChange("XK"))
	assert.Equal(t, "44-123", f.Format("XK", "44-123"))
	assert.False(t, f.Validate("XK", "44123456"))

	e164, err := f.Normalize("US", "(201) 555-0123")
	require.NoError(t, err)
	assert.Equal(t, "+12015550123", e164)

	_, err = f.Normalize("US", "201")
	assert.ErrorIs(t, err, ErrInvalidNumber)

	_, err = f.Normalize("ZZ", "2015550123")
	assert.ErrorIs(t, err, ErrUnknownCountry)
}

func TestLibFormatter(t *testing.T) {
	f := NewLibFormatter(refdata.Default())

	assert.Equal(t, "(201) 555-0123", f.Format("US", "2015550123"))
	assert.True(t, f.Validate("US", "(201) 555-0123"))
	assert.False(t, f.Validate("US", "201555"))
	assert.False(t, f.Validate("US", ""))
	assert.Equal(t, "", f.Format("US", "abc"))

	placeholder := f.OnCountryChange("US")
	assert.Equal(t, 10, DigitCapacity(placeholder))

	e164, err := f.Normalize("GB", "07400 123456")
	require.NoError(t, err)
	assert.Equal(t, "+447400123456", e164)

	_, err = f.Normalize("US", "12")
	assert.ErrorIs(t, err, ErrInvalidNumber)

	_, err = f.Normalize("ZZ", "2015550123")
	assert.ErrorIs(t, err, ErrUnknownCountry)
}

func TestField_CountryChangeResetsValue(t *testing.T) {
	for _, kind := range []string{KindPlaceholder, KindLibphonenumber} {
		t.Run(kind, func(t *testing.T) {
			f, err := New(kind, refdata.Default())
			require.NoError(t, err)

			field := NewField(f, "US")
			assert.Equal(t, "", field.Value())
			assert.NotEmpty(t, field.Placeholder())

			field.Input("2015550123")
			assert.Equal(t, "(201) 555-0123", field.Value())
			assert.True(t, field.Valid())

			field.SetCountry("GB")
			assert.Equal(t, "GB", field.Country())
			assert.Equal(t, "", field.Value())
			assert.False(t, field.Valid())

			field.Input("7400123456")
			e164, err := field.E164()
			require.NoError(t, err)
			assert.Equal(t, "+447400123456", e164)
		})
	}
}

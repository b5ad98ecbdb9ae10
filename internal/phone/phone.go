// Package phone formats and validates phone numbers as they are typed.
//
// The placeholder functions treat every ASCII digit of a placeholder such as
// "(201) 555-0123" as an input position and every other character as a
// literal separator.
package phone

import (
	"errors"
	"strings"
)

var (
	// ErrUnknownCountry is returned when no profile exists for a country code.
	ErrUnknownCountry = errors.New("unknown phone country")
	// ErrInvalidNumber is returned when a number does not match its country.
	ErrInvalidNumber = errors.New("invalid phone number")
)

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Digits strips everything but ASCII digits from s.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if isDigit(r) {
			return r
		}
		return -1
	}, s)
}

// DigitCapacity counts the digit positions of a placeholder.
func DigitCapacity(placeholder string) int {
	n := 0
	for _, r := range placeholder {
		if isDigit(r) {
			n++
		}
	}
	return n
}

// Format lays the digits of raw over placeholder. Literals are only written
// while input digits remain to be placed, so partial input renders as a
// prefix of the full pattern. Digits beyond the placeholder's capacity are
// dropped. With no placeholder, raw is returned unchanged.
func Format(raw, placeholder string) string {
	if placeholder == "" {
		return raw
	}

	digits := Digits(raw)
	var b strings.Builder
	b.Grow(len(placeholder))

	next := 0
	for _, r := range placeholder {
		if next >= len(digits) {
			break
		}
		if isDigit(r) {
			b.WriteByte(digits[next])
			next++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Validate reports whether raw holds exactly as many digits as placeholder
// has positions. Empty input and an empty placeholder are never valid.
func Validate(raw, placeholder string) bool {
	n := len(Digits(raw))
	return n > 0 && n == DigitCapacity(placeholder)
}

// Normalize joins a dial code and the digits of raw as +<dial><digits>.
func Normalize(dial, raw string) string {
	return "+" + Digits(dial) + Digits(raw)
}

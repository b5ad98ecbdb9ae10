package phone

// Field is the state of one phone input: the selected country, the
// placeholder shown for it and the formatted value typed so far.
type Field struct {
	formatter   Formatter
	country     string
	placeholder string
	value       string
}

// NewField creates an empty field for country.
func NewField(f Formatter, country string) *Field {
	field := &Field{formatter: f}
	field.SetCountry(country)
	return field
}

// SetCountry selects a new country. The entered value is cleared rather than
// reformatted against the new pattern.
func (f *Field) SetCountry(country string) {
	f.country = country
	f.placeholder = f.formatter.OnCountryChange(country)
	f.value = ""
}

// Input replaces the value with raw formatted for the current country and
// returns what should be displayed.
func (f *Field) Input(raw string) string {
	f.value = f.formatter.Format(f.country, raw)
	return f.value
}

func (f *Field) Country() string     { return f.country }
func (f *Field) Placeholder() string { return f.placeholder }
func (f *Field) Value() string       { return f.value }

// Valid reports whether the current value is a complete number.
func (f *Field) Valid() bool {
	return f.formatter.Validate(f.country, f.value)
}

// E164 returns the value as +<dial><digits>.
func (f *Field) E164() (string, error) {
	return f.formatter.Normalize(f.country, f.value)
}

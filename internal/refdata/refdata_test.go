package refdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LoadsEmbeddedTables(t *testing.T) {
	c := Default()

	us, ok := c.Lookup("US")
	require.True(t, ok)
	assert.Equal(t, "United States", us.Name)
	assert.Equal(t, "1", us.Dial)
	assert.Equal(t, "(201) 555-0123", us.Placeholder)

	assert.Equal(t, "US", c.Countries()[0].Code)
	assert.Same(t, c, Default())
}

func TestLookup_IgnoresCase(t *testing.T) {
	p, ok := Default().Lookup(" gb ")
	require.True(t, ok)
	assert.Equal(t, "44", p.Dial)

	_, ok = Default().Lookup("ZZ")
	assert.False(t, ok)
	assert.Equal(t, "", Default().Placeholder("ZZ"))
}

func TestRegions(t *testing.T) {
	c := Default()

	tests := []struct {
		country  string
		requires bool
		label    string
	}{
		{"US", true, "State"},
		{"CA", true, "Province"},
		{"AU", true, "State / Territory"},
		{"IN", true, "State"},
		{"GB", false, DefaultRegionLabel},
		{"ZZ", false, DefaultRegionLabel},
	}

	for _, tt := range tests {
		t.Run(tt.country, func(t *testing.T) {
			assert.Equal(t, tt.requires, c.RequiresRegion(tt.country))
			assert.Equal(t, tt.label, c.RegionLabel(tt.country))
			if !tt.requires {
				assert.Empty(t, c.Regions(tt.country))
			}
		})
	}

	assert.True(t, c.HasRegion("US", "tx"))
	assert.True(t, c.HasRegion("CA", "ON"))
	assert.False(t, c.HasRegion("US", "ON"))
	assert.Len(t, c.Regions("US"), 51)
}

func TestRegions_ReturnsCopy(t *testing.T) {
	c := Default()
	r := c.Regions("US")
	r[0].Name = "changed"
	assert.Equal(t, "Alabama", c.Regions("US")[0].Name)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("- {code: US}\n- {code: us}\n"), nil)
	assert.ErrorContains(t, err, "duplicate country code US")

	_, err = Parse([]byte("- {name: Nowhere}\n"), nil)
	assert.ErrorContains(t, err, "has no code")

	_, err = Parse([]byte("- {code: US}\n"), []byte("FR:\n  regions:\n    - {code: IDF, name: Ile-de-France}\n"))
	assert.ErrorContains(t, err, "unknown country FR")

	_, err = Parse([]byte("not: [a list"), nil)
	assert.Error(t, err)
}

func TestParse_StripsDialPlus(t *testing.T) {
	c, err := Parse([]byte("- {code: gb, name: United Kingdom, dial: \"+44\"}\n"), nil)
	require.NoError(t, err)

	p, ok := c.Lookup("GB")
	require.True(t, ok)
	assert.Equal(t, "44", p.Dial)
}

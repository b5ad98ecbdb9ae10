// Package refdata holds the read-only country and region tables used by the
// checkout form: dial codes, phone placeholders and state/province lists.
package refdata

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed countries.yaml
var countriesYAML []byte

//go:embed regions.yaml
var regionsYAML []byte

// DefaultRegionLabel is shown for countries without a configured label.
const DefaultRegionLabel = "State / Region"

// CountryPhoneProfile describes how phone numbers are entered for a country.
type CountryPhoneProfile struct {
	Code        string `yaml:"code" json:"code"`
	Name        string `yaml:"name" json:"name"`
	Dial        string `yaml:"dial" json:"dial"`
	Placeholder string `yaml:"placeholder" json:"placeholder"`
}

// RegionEntry is a state, province or territory.
type RegionEntry struct {
	Code string `yaml:"code" json:"code"`
	Name string `yaml:"name" json:"name"`
}

type regionGroup struct {
	Label   string        `yaml:"label"`
	Regions []RegionEntry `yaml:"regions"`
}

// Catalog is an immutable lookup over the reference tables.
type Catalog struct {
	countries []CountryPhoneProfile
	index     map[string]int
	regions   map[string]regionGroup
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog built from the embedded tables.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(countriesYAML, regionsYAML)
		if err != nil {
			panic(fmt.Sprintf("refdata: embedded tables are invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Parse builds a catalog from YAML country and region documents.
func Parse(countries, regions []byte) (*Catalog, error) {
	var list []CountryPhoneProfile
	if err := yaml.Unmarshal(countries, &list); err != nil {
		return nil, fmt.Errorf("parse countries: %w", err)
	}

	groups := map[string]regionGroup{}
	if len(regions) > 0 {
		if err := yaml.Unmarshal(regions, &groups); err != nil {
			return nil, fmt.Errorf("parse regions: %w", err)
		}
	}

	c := &Catalog{
		countries: make([]CountryPhoneProfile, 0, len(list)),
		index:     make(map[string]int, len(list)),
		regions:   make(map[string]regionGroup, len(groups)),
	}

	for _, p := range list {
		p.Code = normalizeCode(p.Code)
		if p.Code == "" {
			return nil, fmt.Errorf("country %q has no code", p.Name)
		}
		if _, dup := c.index[p.Code]; dup {
			return nil, fmt.Errorf("duplicate country code %s", p.Code)
		}
		p.Dial = strings.TrimPrefix(strings.TrimSpace(p.Dial), "+")
		c.index[p.Code] = len(c.countries)
		c.countries = append(c.countries, p)
	}

	for code, g := range groups {
		code = normalizeCode(code)
		if _, ok := c.index[code]; !ok {
			return nil, fmt.Errorf("regions defined for unknown country %s", code)
		}
		c.regions[code] = g
	}

	return c, nil
}

// Countries returns every profile in declaration order.
func (c *Catalog) Countries() []CountryPhoneProfile {
	out := make([]CountryPhoneProfile, len(c.countries))
	copy(out, c.countries)
	return out
}

// Lookup finds a profile by ISO code, ignoring case.
func (c *Catalog) Lookup(code string) (CountryPhoneProfile, bool) {
	i, ok := c.index[normalizeCode(code)]
	if !ok {
		return CountryPhoneProfile{}, false
	}
	return c.countries[i], true
}

// Placeholder returns the phone placeholder for a country, or "" when unknown.
func (c *Catalog) Placeholder(code string) string {
	p, _ := c.Lookup(code)
	return p.Placeholder
}

// Regions returns the subdivisions of a country. An empty result means the
// state field is free text.
func (c *Catalog) Regions(code string) []RegionEntry {
	g, ok := c.regions[normalizeCode(code)]
	if !ok {
		return []RegionEntry{}
	}
	out := make([]RegionEntry, len(g.Regions))
	copy(out, g.Regions)
	return out
}

// RequiresRegion reports whether a region must be selected for the country.
func (c *Catalog) RequiresRegion(code string) bool {
	return len(c.regions[normalizeCode(code)].Regions) > 0
}

// HasRegion reports whether region is one of the country's subdivisions.
func (c *Catalog) HasRegion(country, region string) bool {
	region = normalizeCode(region)
	for _, r := range c.regions[normalizeCode(country)].Regions {
		if r.Code == region {
			return true
		}
	}
	return false
}

// RegionLabel is the field label for a country's subdivisions.
func (c *Catalog) RegionLabel(code string) string {
	if g, ok := c.regions[normalizeCode(code)]; ok && g.Label != "" {
		return g.Label
	}
	return DefaultRegionLabel
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/groupclass/checkout/internal/domain"
	"github.com/groupclass/checkout/internal/phone"
	"github.com/groupclass/checkout/internal/refdata"
)

// CatalogHandler serves the reference data and settings the checkout page
// needs to render.
type CatalogHandler struct {
	catalog        *refdata.Catalog
	formatter      phone.Formatter
	membership     domain.Membership
	publishableKey string
}

func NewCatalogHandler(catalog *refdata.Catalog, formatter phone.Formatter, membership domain.Membership, publishableKey string) *CatalogHandler {
	return &CatalogHandler{
		catalog:        catalog,
		formatter:      formatter,
		membership:     membership,
		publishableKey: publishableKey,
	}
}

type countryResponse struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Dial           string `json:"dial"`
	Placeholder    string `json:"placeholder"`
	RegionLabel    string `json:"regionLabel"`
	RequiresRegion bool   `json:"requiresRegion"`
}

// Countries handles GET /api/countries.
func (h *CatalogHandler) Countries(w http.ResponseWriter, r *http.Request) {
	countries := h.catalog.Countries()
	out := make([]countryResponse, 0, len(countries))
	for _, c := range countries {
		out = append(out, countryResponse{
			Code:           c.Code,
			Name:           c.Name,
			Dial:           c.Dial,
			Placeholder:    h.formatter.OnCountryChange(c.Code),
			RegionLabel:    h.catalog.RegionLabel(c.Code),
			RequiresRegion: h.catalog.RequiresRegion(c.Code),
		})
	}
	JSON(w, http.StatusOK, out)
}

// Regions handles GET /api/countries/{code}/regions.
func (h *CatalogHandler) Regions(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	if _, ok := h.catalog.Lookup(code); !ok {
		Error(w, r, domain.ErrNotFound("unknown country"))
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"country": code,
		"label":   h.catalog.RegionLabel(code),
		"regions": h.catalog.Regions(code),
	})
}

type phoneResponse struct {
	Country     string `json:"country"`
	Formatted   string `json:"formatted"`
	Placeholder string `json:"placeholder"`
	Valid       bool   `json:"valid"`
	E164        string `json:"e164,omitempty"`
}

// FormatPhone handles GET /api/phone/format?country=&input=.
func (h *CatalogHandler) FormatPhone(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	country := strings.ToUpper(strings.TrimSpace(q.Get("country")))
	if country == "" {
		Error(w, r, domain.ErrBadRequest("country is required"))
		return
	}
	if _, ok := h.catalog.Lookup(country); !ok {
		Error(w, r, domain.ErrNotFound("unknown country"))
		return
	}

	formatted := h.formatter.Format(country, q.Get("input"))
	resp := phoneResponse{
		Country:     country,
		Formatted:   formatted,
		Placeholder: h.formatter.OnCountryChange(country),
		Valid:       h.formatter.Validate(country, formatted),
	}
	if resp.Valid {
		if e164, err := h.formatter.Normalize(country, formatted); err == nil {
			resp.E164 = e164
		}
	}
	JSON(w, http.StatusOK, resp)
}

// Config handles GET /api/checkout/config.
func (h *CatalogHandler) Config(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"publishableKey": h.publishableKey,
		"phoneFormatter": h.formatter.Kind(),
		"membership":     h.membership,
	})
}

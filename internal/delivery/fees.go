// Package delivery prices shipping by destination city.
package delivery

import (
	"strconv"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/kvfile"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultCity is the fee table entry used for any city not listed.
const DefaultCity = "Remaining Cities"

// FeeTable looks up flat fees in a city;fee file. The file is re-read on
// every lookup so edits apply without a restart.
type FeeTable struct {
	file        *kvfile.File
	defaultCity string
}

// NewFeeTable creates a FeeTable over the file at path. An empty
// defaultCity falls back to DefaultCity.
func NewFeeTable(path, defaultCity string) *FeeTable {
	if strings.TrimSpace(defaultCity) == "" {
		defaultCity = DefaultCity
	}
	return &FeeTable{file: kvfile.Open(path), defaultCity: NormalizeCity(defaultCity)}
}

// NormalizeCity trims, collapses inner whitespace and title-cases city.
func NormalizeCity(city string) string {
	city = strings.Join(strings.Fields(city), " ")
	return cases.Title(language.Und).String(strings.ToLower(city))
}

// Lookup returns the fee for city, or the default entry's fee when the
// city is absent.
func (t *FeeTable) Lookup(city string) (float64, error) {
	entries, err := t.file.Entries()
	if err != nil {
		return 0, err
	}

	fees := make(map[string]string, len(entries))
	for _, e := range entries {
		fees[NormalizeCity(e.Key)] = e.Value
	}

	raw, ok := fees[NormalizeCity(city)]
	if !ok {
		raw, ok = fees[t.defaultCity]
		if !ok {
			return 0, apperr.Newf(apperr.Persistence, "delivery.lookup", "fee table has no %q entry", t.defaultCity)
		}
	}

	fee, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || fee < 0 {
		return 0, apperr.Newf(apperr.Persistence, "delivery.lookup", "invalid fee %q", raw)
	}
	return fee, nil
}

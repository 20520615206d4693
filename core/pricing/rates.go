package pricing

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// RateTable maps currency codes to the multiplier that converts one unit of the base currency.
// It is immutable once built; share it freely between goroutines.
type RateTable struct {
	base     string
	rates    map[string]decimal.Decimal
	complete bool
}

// NewRateTable builds a complete table from provider rates.
// Codes are upper-cased, non-positive rates are dropped and the base always maps to 1.
func NewRateTable(base string, rates map[string]float64) RateTable {
	base = normalizeCode(base)
	table := RateTable{
		base:     base,
		rates:    make(map[string]decimal.Decimal, len(rates)+1),
		complete: true,
	}
	for code, rate := range rates {
		code = normalizeCode(code)
		if code == "" || rate <= 0 {
			continue
		}
		table.rates[code] = decimal.NewFromFloat(rate)
	}
	table.rates[base] = decimal.NewFromInt(1)
	return table
}

// BaseOnly is the degraded table used while rates are unknown: it only knows the base currency.
func BaseOnly(base string) RateTable {
	base = normalizeCode(base)
	return RateTable{
		base:  base,
		rates: map[string]decimal.Decimal{base: decimal.NewFromInt(1)},
	}
}

func (t RateTable) Base() string {
	if t.base == "" {
		return BaseCurrency
	}
	return t.base
}

// Complete reports whether the table came from a successful fetch.
func (t RateTable) Complete() bool { return t.complete }

// Rate returns the multiplier for `code`.
func (t RateTable) Rate(code string) (decimal.Decimal, bool) {
	code = normalizeCode(code)
	if code == t.Base() {
		return decimal.NewFromInt(1), true
	}
	rate, ok := t.rates[code]
	return rate, ok
}

// Currencies returns the known codes, sorted.
func (t RateTable) Currencies() []string {
	codes := make([]string, 0, len(t.rates)+1)
	seen := false
	for code := range t.rates {
		if code == t.Base() {
			seen = true
		}
		codes = append(codes, code)
	}
	if !seen {
		codes = append(codes, t.Base())
	}
	sort.Strings(codes)
	return codes
}

// Rates returns a copy of the table as floats, for display.
func (t RateTable) Rates() map[string]float64 {
	out := make(map[string]float64, len(t.rates)+1)
	for code, rate := range t.rates {
		out[code] = rate.InexactFloat64()
	}
	out[t.Base()] = 1
	return out
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RatePerPage is the price of one page, in BaseCurrency.
var RatePerPage = decimal.NewFromInt(5000)

const displayPlaces = 2

// BasePrice returns the price of `pages` pages in BaseCurrency.
func BasePrice(pages int) decimal.Decimal {
	if pages <= 0 {
		return decimal.Zero
	}
	return RatePerPage.Mul(decimal.NewFromInt(int64(pages)))
}

// Convert converts a base-currency amount into `target`.
// The base currency is returned untouched; anything else is rounded to 2 places.
// Currencies missing from the table convert at a rate of 1.
func Convert(amount decimal.Decimal, table RateTable, target string) decimal.Decimal {
	target = normalizeCode(target)
	if target == "" || target == table.Base() {
		return amount
	}
	rate, ok := table.Rate(target)
	if !ok {
		rate = decimal.NewFromInt(1)
	}
	return amount.Mul(rate).Round(displayPlaces)
}

// AssignmentType is the kind of academic work being priced. All types share the same tariff.
type AssignmentType string

const (
	TypeAssignment AssignmentType = "assignment"
	TypeReport     AssignmentType = "report"
)

var AssignmentTypes = []AssignmentType{TypeAssignment, TypeReport}

// ParseAssignmentType returns TypeAssignment for blank input.
func ParseAssignmentType(s string) (AssignmentType, bool) {
	switch AssignmentType(strings.ToLower(strings.TrimSpace(s))) {
	case "", TypeAssignment:
		return TypeAssignment, true
	case TypeReport:
		return TypeReport, true
	default:
		return "", false
	}
}

// Quote is a derived price estimate. It is never persisted.
type Quote struct {
	Pages           int             `json:"pages"`
	BaseCurrency    string          `json:"base_currency"`
	BasePrice       decimal.Decimal `json:"base_price"`
	DisplayCurrency string          `json:"display_currency"`
	DisplayPrice    decimal.Decimal `json:"display_price"`
	RatesComplete   bool            `json:"rates_complete"`
}

// NewQuote prices `q` and converts it to `target` using `table`. A blank target means the base currency.
func NewQuote(q WorkQuantity, table RateTable, target string) Quote {
	target = normalizeCode(target)
	if target == "" {
		target = table.Base()
	}
	pages := q.PageCount()
	base := BasePrice(pages)
	return Quote{
		Pages:           pages,
		BaseCurrency:    table.Base(),
		BasePrice:       base,
		DisplayCurrency: target,
		DisplayPrice:    Convert(base, table, target),
		RatesComplete:   table.Complete(),
	}
}

// DisplayText formats the display price, e.g. "8.70 USD".
func (q Quote) DisplayText() string {
	if q.DisplayCurrency == q.BaseCurrency {
		return q.DisplayPrice.String() + " " + q.DisplayCurrency
	}
	return q.DisplayPrice.StringFixed(displayPlaces) + " " + q.DisplayCurrency
}

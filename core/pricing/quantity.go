// Package pricing turns an amount of written work into a price in the base currency
// and converts that price into a display currency.
package pricing

import (
	"strconv"
	"strings"
)

const (
	WordsPerPage = 250
	BaseCurrency = "MWK"
)

type QuantityKind int

const (
	QuantityUnset QuantityKind = iota
	QuantityWords
	QuantityPages
)

func (k QuantityKind) String() string {
	switch k {
	case QuantityWords:
		return "words"
	case QuantityPages:
		return "pages"
	default:
		return "unset"
	}
}

// WorkQuantity is how much work a customer asks for: a word count, a page count, or nothing yet.
// Only one of them is ever driving the price.
type WorkQuantity struct {
	kind QuantityKind
	n    int
}

// Words returns a quantity driven by a word count. Negative counts are Unset.
func Words(n int) WorkQuantity {
	if n < 0 {
		return Unset()
	}
	return WorkQuantity{kind: QuantityWords, n: n}
}

// Pages returns a quantity driven by a page count. Negative counts are Unset.
func Pages(n int) WorkQuantity {
	if n < 0 {
		return Unset()
	}
	return WorkQuantity{kind: QuantityPages, n: n}
}

func Unset() WorkQuantity {
	return WorkQuantity{}
}

func (q WorkQuantity) Kind() QuantityKind { return q.kind }
func (q WorkQuantity) Value() int         { return q.n }

// PageCount returns the number of billable pages.
// Words are rounded up to whole pages of WordsPerPage words.
func (q WorkQuantity) PageCount() int {
	switch q.kind {
	case QuantityPages:
		return q.n
	case QuantityWords:
		pages := q.n / WordsPerPage
		if q.n%WordsPerPage != 0 {
			pages++
		}
		return pages
	default:
		return 0
	}
}

func (q WorkQuantity) String() string {
	if q.kind == QuantityUnset {
		return "unset"
	}
	return strconv.Itoa(q.n) + " " + q.kind.String()
}

// ParseQuantity reads raw user input. Anything that is not a non-negative integer counts as absent.
// A page count wins over a word count when both are present.
func ParseQuantity(words, pages string) WorkQuantity {
	if n, ok := parseCount(pages); ok {
		return Pages(n)
	}
	if n, ok := parseCount(words); ok {
		return Words(n)
	}
	return Unset()
}

func parseCount(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

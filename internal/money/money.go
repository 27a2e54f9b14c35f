// Package money centralises the numeric coercion and rounding rules used by
// the commission and trust calculations. All parsing degrades to zero rather
// than returning an error so that form-driven callers always get a usable
// figure; validation of required fields happens at the save boundary instead.
package money

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse coerces a user-supplied monetary string to a float64. Grouping commas,
// surrounding whitespace and a leading dollar sign are tolerated. Anything
// that still fails to parse yields 0.
func Parse(input string) float64 {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParsePercent coerces a percentage string with the same zero-default
// semantics as Parse.
func ParsePercent(input string) float64 {
	s := strings.TrimSpace(input)
	s = strings.TrimSuffix(s, "%")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// Round2 rounds half-up to two decimal places.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Format renders a monetary value with exactly two decimal places.
func Format(v float64) string {
	return decimal.NewFromFloat(v).Round(2).StringFixed(2)
}

package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNoPrice marks a price field that is empty or cannot be read as a
// positive amount. Such offers carry no price rather than a zero price.
var ErrNoPrice = errors.New("no price")

var (
	currencyRegex    = regexp.MustCompile(`(?i)r\$|us\$|brl|usd|\$|\s|\x{00a0}`)
	priceDigitsRegex = regexp.MustCompile(`^\d[\d.,]*$`)
)

// ParsePrice reads a locale-formatted price: "R$ 1.234,56", "1234.56",
// "1,234.56", "2.500", "2.500,00".
func ParsePrice(text string) (decimal.Decimal, error) {
	s := currencyRegex.ReplaceAllString(strings.TrimSpace(text), "")
	if s == "" {
		return decimal.Zero, ErrNoPrice
	}
	if !priceDigitsRegex.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNoPrice, text)
	}

	d, err := decimal.NewFromString(canonicalDecimal(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNoPrice, text)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: non-positive %q", ErrNoPrice, text)
	}
	return d.Round(2), nil
}

// PricePointer converts a parsed price into the optional float used on offers.
func PricePointer(text string) *float64 {
	d, err := ParsePrice(text)
	if err != nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

// canonicalDecimal rewrites thousands/decimal separators into "1234.56".
func canonicalDecimal(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		// Both present: whichever comes last is the decimal separator
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		return resolveSingleSeparator(s, ",")
	case lastDot >= 0:
		return resolveSingleSeparator(s, ".")
	}
	return s
}

// resolveSingleSeparator decides whether sep groups thousands or marks
// decimals when it is the only separator present.
func resolveSingleSeparator(s, sep string) string {
	if strings.Count(s, sep) > 1 {
		return strings.ReplaceAll(s, sep, "")
	}
	idx := strings.Index(s, sep)
	if lead := strings.TrimPrefix(s[:idx], "-"); lead != "0" && len(s)-idx-1 == 3 {
		return strings.Replace(s, sep, "", 1)
	}
	return strings.Replace(s, sep, ".", 1)
}

package csvitems

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/totals"
)

var errEmpty = errors.New("empty value")

// parseNumber parses a formatted number.
// European: "1.234,56" -> 1234.56. Otherwise: "1,234.56" -> 1234.56.
// Currency symbols, percent signs and spaces are ignored.
func parseNumber(s string, decimalComma bool) (float64, error) {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '-', r == '.', r == ',':
			return r
		}

		return -1
	}, s)

	if clean == "" {
		return 0, errEmpty
	}

	if decimalComma {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	} else {
		clean = strings.ReplaceAll(clean, ",", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, err
	}

	return d.InexactFloat64(), nil
}

// parseDiscount reads a discount cell: "10%" is a rate, "5,00" an amount.
// Empty cells mean no discount.
func parseDiscount(s string, decimalComma bool) (totals.Discount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	v, err := parseNumber(s, decimalComma)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(s, "%") {
		return totals.Rate(v), nil
	}

	return totals.Amount(v), nil
}

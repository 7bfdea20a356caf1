package totals

import "github.com/shopspring/decimal"

// Round2 rounds v half away from zero to two decimal places.
func Round2(v float64) float64 {
	f, _ := toDecimal(v).Round(2).Float64()
	return f
}

// Format renders v with exactly two decimal places, e.g. "14.80".
func Format(v float64) string {
	return toDecimal(v).StringFixed(2)
}

// Cents converts v to integer minor units after rounding to two decimals.
func Cents(v float64) int64 {
	return toDecimal(v).Round(2).Shift(2).IntPart()
}

// FromCents is the inverse of Cents.
func FromCents(c int64) float64 {
	f, _ := decimal.New(c, -2).Float64()
	return f
}

// Rounded returns a copy of t with every field rounded for display.
func (t Totals) Rounded() Totals {
	return Totals{
		ItemsGrossSubtotal:   Round2(t.ItemsGrossSubtotal),
		ItemsDiscountTotal:   Round2(t.ItemsDiscountTotal),
		ItemsNetSubtotal:     Round2(t.ItemsNetSubtotal),
		InvoiceDiscountTotal: Round2(t.InvoiceDiscountTotal),
		TaxTotal:             Round2(t.TaxTotal),
		RoundingAdjustment:   Round2(t.RoundingAdjustment),
		GrandTotal:           Round2(t.GrandTotal),
	}
}

func toDecimal(v float64) decimal.Decimal {
	return decimal.NewFromFloat(finite(v))
}

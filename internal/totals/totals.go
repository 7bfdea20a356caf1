// Package totals computes invoice monetary totals: per-row discount and tax,
// aggregation across rows, an invoice-level discount, a manual rounding
// adjustment and the final non-negative grand total.
//
// Every function is pure. Values keep full float64 precision; rounding to two
// decimals happens only at presentation time (see Round2 and Format).
package totals

import "math"

// LineItem is one billable row.
type LineItem struct {
	Quantity       float64
	UnitPrice      float64
	TaxRatePercent float64
	Discount       Discount
}

// RowTotals is the breakdown of a single line item.
type RowTotals struct {
	Gross    float64
	Discount float64
	Net      float64
	Tax      float64
	Total    float64
}

// ItemsTotals holds the sums of RowTotals across all line items.
type ItemsTotals struct {
	Gross    float64
	Discount float64
	Net      float64
	Tax      float64
}

// Input is everything the calculation depends on.
type Input struct {
	Items              []LineItem
	Discount           Discount
	RoundingAdjustment float64
}

// Totals is the computed result for an invoice.
//
// ItemsGrossSubtotal is what downstream consumers label "items subtotal":
// it is the pre-discount sum. ItemsNetSubtotal is the post-row-discount,
// pre-tax sum that the invoice discount and grand total are based on.
type Totals struct {
	ItemsGrossSubtotal   float64
	ItemsDiscountTotal   float64
	ItemsNetSubtotal     float64
	InvoiceDiscountTotal float64
	TaxTotal             float64
	RoundingAdjustment   float64
	GrandTotal           float64
}

// CalcRow computes gross, discount, net, tax and total for a line item.
// Tax is charged on the net amount. The tax rate is used as given.
// A product that overflows float64 counts as zero, like a non-finite input.
func CalcRow(item LineItem) RowTotals {
	gross := finite(finite(item.Quantity) * finite(item.UnitPrice))
	discount := discountOn(item.Discount, gross)
	net := max(0, gross-discount)
	tax := finite(net * (finite(item.TaxRatePercent) / 100))

	return RowTotals{
		Gross:    gross,
		Discount: discount,
		Net:      net,
		Tax:      tax,
		Total:    finite(net + tax),
	}
}

// Aggregate sums the row totals of items.
func Aggregate(items []LineItem) ItemsTotals {
	var sum ItemsTotals

	for _, item := range items {
		row := CalcRow(item)

		sum.Gross += row.Gross
		sum.Discount += row.Discount
		sum.Net += row.Net
		sum.Tax += row.Tax
	}

	return ItemsTotals{
		Gross:    finite(sum.Gross),
		Discount: finite(sum.Discount),
		Net:      finite(sum.Net),
		Tax:      finite(sum.Tax),
	}
}

// ApplyInvoiceDiscount returns the invoice-level discount on the net subtotal.
// The result is not capped at itemsNet; only the grand total is floored.
func ApplyInvoiceDiscount(itemsNet float64, d Discount) float64 {
	return discountOn(d, itemsNet)
}

// Finalize folds the invoice discount, tax and rounding adjustment into the
// grand total, which is never negative.
func Finalize(itemsNet, invoiceDiscount, taxTotal, roundingAdjustment float64) float64 {
	return max(0, finite(itemsNet-invoiceDiscount+taxTotal+finite(roundingAdjustment)))
}

// Calculate runs the whole pipeline for in.
func Calculate(in Input) Totals {
	items := Aggregate(in.Items)
	invoiceDiscount := ApplyInvoiceDiscount(items.Net, in.Discount)
	rounding := finite(in.RoundingAdjustment)

	return Totals{
		ItemsGrossSubtotal:   items.Gross,
		ItemsDiscountTotal:   items.Discount,
		ItemsNetSubtotal:     items.Net,
		InvoiceDiscountTotal: invoiceDiscount,
		TaxTotal:             items.Tax,
		RoundingAdjustment:   rounding,
		GrandTotal:           Finalize(items.Net, invoiceDiscount, items.Tax, rounding),
	}
}

// Balance is what remains to be paid on grandTotal, never negative.
func Balance(grandTotal, amountPaid float64) float64 {
	return max(0, finite(grandTotal)-finite(amountPaid))
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

// finite maps NaN and ±Inf to zero.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}

	return v
}

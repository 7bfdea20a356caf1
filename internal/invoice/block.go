package invoice

import "github.com/MrJamesThe3rd/invoicer/internal/totals"

// Block is the rounded totals record handed to clients and storage.
// ItemsSubtotal carries the gross sum before line discounts; the
// post-discount figure is ItemsNetSubtotal.
type Block struct {
	ItemsSubtotal        float64 `json:"items_subtotal"`
	ItemsDiscountTotal   float64 `json:"items_discount_total"`
	ItemsNetSubtotal     float64 `json:"items_net_subtotal"`
	InvoiceDiscountTotal float64 `json:"invoice_discount_total"`
	TaxTotal             float64 `json:"tax_total"`
	RoundingAdjustment   float64 `json:"rounding_adjustment"`
	GrandTotal           float64 `json:"grand_total"`
}

func NewBlock(t totals.Totals) Block {
	r := t.Rounded()

	return Block{
		ItemsSubtotal:        r.ItemsGrossSubtotal,
		ItemsDiscountTotal:   r.ItemsDiscountTotal,
		ItemsNetSubtotal:     r.ItemsNetSubtotal,
		InvoiceDiscountTotal: r.InvoiceDiscountTotal,
		TaxTotal:             r.TaxTotal,
		RoundingAdjustment:   r.RoundingAdjustment,
		GrandTotal:           r.GrandTotal,
	}
}

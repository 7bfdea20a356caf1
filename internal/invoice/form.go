package invoice

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/MrJamesThe3rd/invoicer/internal/totals"
)

// Number is a float that decodes from whatever a partially filled form sends.
// Numbers and numeric strings (a decimal comma is accepted) keep their value;
// anything else, including null, booleans, NaN and infinities, becomes 0.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = 0

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil
	}

	*n = Number(coerce(raw))

	return nil
}

// ParseNumber coerces a free-form text value the same way Number does.
func ParseNumber(s string) float64 {
	return coerce(s)
}

func coerce(raw any) float64 {
	switch v := raw.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}

		return finite(f)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", ".")
		if s == "" {
			return 0
		}

		f, err := cast.ToFloat64E(s)
		if err != nil {
			return 0
		}

		return finite(f)
	case float64:
		return finite(v)
	}

	return 0
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}

	return f
}

// DiscountForm is the wire shape of a discount: {"kind": "rate"|"amount", "value": n}.
type DiscountForm struct {
	Kind  totals.Kind `json:"kind"`
	Value Number      `json:"value"`
}

func (f *DiscountForm) UnmarshalJSON(b []byte) error {
	var raw struct {
		Kind  any    `json:"kind"`
		Value Number `json:"value"`
	}

	*f = DiscountForm{}

	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}

	kind, _ := raw.Kind.(string)
	f.Kind = totals.Kind(kind)
	f.Value = raw.Value

	return nil
}

// Discount returns the typed discount, or nil for a missing or unknown kind.
func (f *DiscountForm) Discount() totals.Discount {
	if f == nil {
		return nil
	}

	return totals.NewDiscount(f.Kind, float64(f.Value))
}

// FormOf is the inverse of DiscountForm.Discount.
func FormOf(d totals.Discount) *DiscountForm {
	if d == nil {
		return nil
	}

	return &DiscountForm{Kind: d.Kind(), Value: Number(d.Value())}
}

// ItemForm is the wire shape of a line item.
type ItemForm struct {
	Description    string        `json:"description"`
	Quantity       Number        `json:"quantity"`
	UnitPrice      Number        `json:"unit_price"`
	TaxRatePercent Number        `json:"tax_rate_percent"`
	Discount       *DiscountForm `json:"discount,omitempty"`
}

func (f ItemForm) Item() Item {
	return Item{
		Description: f.Description,
		LineItem: totals.LineItem{
			Quantity:       float64(f.Quantity),
			UnitPrice:      float64(f.UnitPrice),
			TaxRatePercent: float64(f.TaxRatePercent),
			Discount:       f.Discount.Discount(),
		},
	}
}

// DraftForm is the wire shape of the monetary part of an invoice form.
type DraftForm struct {
	Items              []ItemForm    `json:"items"`
	Discount           *DiscountForm `json:"discount,omitempty"`
	RoundingAdjustment Number        `json:"rounding_adjustment"`
	AmountPaid         Number        `json:"amount_paid"`
	Currency           string        `json:"currency"`
}

// Draft converts the form into a Draft. It never fails.
func (f DraftForm) Draft() Draft {
	items := make([]Item, len(f.Items))
	for i, it := range f.Items {
		items[i] = it.Item()
	}

	return Draft{
		Items:              items,
		Discount:           f.Discount.Discount(),
		RoundingAdjustment: float64(f.RoundingAdjustment),
		AmountPaid:         float64(f.AmountPaid),
		Currency:           f.Currency,
	}
}

package totals

// Kind is the wire tag of a discount variant.
type Kind string

const (
	KindRate   Kind = "rate"
	KindAmount Kind = "amount"
)

// Discount is a closed set of variants: Rate and Amount. Each variant owns its
// arithmetic through the unexported amount method, so a new kind cannot be
// introduced without defining how it reduces a base.
type Discount interface {
	Kind() Kind
	Value() float64
	amount(base float64) float64
}

// Rate is a percentage discount. Values outside [0, 100] are clamped when applied.
type Rate float64

func (r Rate) Kind() Kind     { return KindRate }
func (r Rate) Value() float64 { return float64(r) }

func (r Rate) amount(base float64) float64 {
	return clamp(finite(float64(r)), 0, 100) / 100 * base
}

// Amount is a fixed discount. Negative values are treated as zero.
type Amount float64

func (a Amount) Kind() Kind     { return KindAmount }
func (a Amount) Value() float64 { return float64(a) }

func (a Amount) amount(float64) float64 {
	return max(0, finite(float64(a)))
}

// NewDiscount builds the variant for kind. Unknown kinds yield nil, which every
// calculation treats as "no discount".
func NewDiscount(kind Kind, value float64) Discount {
	switch kind {
	case KindRate:
		return Rate(value)
	case KindAmount:
		return Amount(value)
	}

	return nil
}

// discountOn returns how much d takes off base. A nil discount takes nothing.
func discountOn(d Discount, base float64) float64 {
	if d == nil {
		return 0
	}

	return d.amount(base)
}

package csvitems

// Profile describes the column layout and number format of a line-item CSV.
// Adding a layout is adding a Profile to the profiles slice.
type Profile struct {
	Name string

	DescCol     string
	QtyCol      string
	PriceCol    string
	TaxCol      string // optional
	DiscountCol string // optional

	// DecimalComma selects European number formatting ("1.234,56").
	DecimalComma bool
	Comma        rune
}

// requiredCols returns the column names that must be present for this profile to match.
func (p Profile) requiredCols() []string {
	return []string{p.DescCol, p.QtyCol, p.PriceCol}
}

// profiles is the ordered list of layouts tried during auto-detection.
var profiles = []Profile{
	{
		Name:         "pt",
		DescCol:      "Descrição",
		QtyCol:       "Quantidade",
		PriceCol:     "Preço unitário",
		TaxCol:       "IVA",
		DiscountCol:  "Desconto",
		DecimalComma: true,
		Comma:        ';',
	},
	{
		Name:         "en",
		DescCol:      "Description",
		QtyCol:       "Quantity",
		PriceCol:     "Unit price",
		TaxCol:       "Tax %",
		DiscountCol:  "Discount",
		DecimalComma: false,
		Comma:        ',',
	},
	{
		Name:         "en-short",
		DescCol:      "Item",
		QtyCol:       "Qty",
		PriceCol:     "Price",
		TaxCol:       "VAT",
		DiscountCol:  "Discount",
		DecimalComma: false,
		Comma:        ',',
	},
}

package invoice

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/totals"
)

var (
	ErrNotFound       = errors.New("invoice not found")
	ErrInvalidPayment = errors.New("payment amount must be positive")
	ErrOverpayment    = errors.New("payment exceeds outstanding balance")
	ErrVoid           = errors.New("invoice is void")
)

// Status represents the lifecycle state of an invoice.
type Status string

const (
	StatusDraft  Status = "draft"
	StatusIssued Status = "issued"
	StatusPaid   Status = "paid"
	StatusVoid   Status = "void"
)

// Item is a described line item.
type Item struct {
	Description string
	totals.LineItem
}

// Invoice is a persisted invoice together with its computed totals.
type Invoice struct {
	ID                 uuid.UUID
	Number             string
	Customer           string
	Currency           string
	Status             Status
	IssueDate          time.Time
	DueDate            *time.Time
	Items              []Item
	Discount           totals.Discount
	RoundingAdjustment float64
	AmountPaid         float64
	Totals             totals.Totals
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          *time.Time
	DeletedAt          *time.Time
}

// Balance is the amount still owed, rounded to cents.
func (inv *Invoice) Balance() float64 {
	return totals.Round2(totals.Balance(inv.Totals.GrandTotal, inv.AmountPaid))
}

// Input returns the calculator input described by the invoice.
func (inv *Invoice) Input() totals.Input {
	return Draft{Items: inv.Items, Discount: inv.Discount, RoundingAdjustment: inv.RoundingAdjustment}.Input()
}

// Recalculate recomputes Totals from the invoice's items and adjustments.
func (inv *Invoice) Recalculate() {
	inv.Totals = totals.Calculate(inv.Input())
}

// Payment records money received against an invoice.
type Payment struct {
	ID        uuid.UUID
	InvoiceID uuid.UUID
	Amount    float64
	PaidAt    time.Time
	Method    string
	Note      string
	CreatedAt time.Time
}

// Draft is the editable, unsaved part of an invoice that drives its totals.
type Draft struct {
	Items              []Item
	Discount           totals.Discount
	RoundingAdjustment float64
	AmountPaid         float64
	Currency           string
}

// Input converts the draft into calculator input.
func (d Draft) Input() totals.Input {
	items := make([]totals.LineItem, len(d.Items))
	for i, it := range d.Items {
		items[i] = it.LineItem
	}

	return totals.Input{
		Items:              items,
		Discount:           d.Discount,
		RoundingAdjustment: d.RoundingAdjustment,
	}
}

// Preview is the result of calculating a draft without persisting it.
type Preview struct {
	Rows     []totals.RowTotals
	Totals   totals.Totals
	Balance  float64
	Currency string
}

// ItemParams is a line item read from an external source, before the
// description catalog is consulted.
type ItemParams struct {
	Item
	RawDescription string
	TaxRateKnown   bool
}

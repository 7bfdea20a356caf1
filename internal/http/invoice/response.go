package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/totals"
)

type rowResponse struct {
	Gross    float64 `json:"gross"`
	Discount float64 `json:"discount"`
	Net      float64 `json:"net"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

type previewResponse struct {
	Rows     []rowResponse `json:"rows"`
	Totals   invoice.Block `json:"totals"`
	Balance  float64       `json:"balance"`
	Currency string        `json:"currency"`
}

type itemResponse struct {
	Description    string                `json:"description"`
	Quantity       float64               `json:"quantity"`
	UnitPrice      float64               `json:"unit_price"`
	TaxRatePercent float64               `json:"tax_rate_percent"`
	Discount       *invoice.DiscountForm `json:"discount,omitempty"`
	Total          float64               `json:"total"`
}

type invoiceResponse struct {
	ID                 uuid.UUID             `json:"id"`
	Number             string                `json:"number"`
	Customer           string                `json:"customer"`
	Currency           string                `json:"currency"`
	Status             invoice.Status        `json:"status"`
	IssueDate          time.Time             `json:"issue_date"`
	DueDate            *time.Time            `json:"due_date,omitempty"`
	Items              []itemResponse        `json:"items"`
	Discount           *invoice.DiscountForm `json:"discount,omitempty"`
	RoundingAdjustment float64               `json:"rounding_adjustment"`
	AmountPaid         float64               `json:"amount_paid"`
	Totals             invoice.Block         `json:"totals"`
	Balance            float64               `json:"balance"`
	Notes              string                `json:"notes,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          *time.Time            `json:"updated_at,omitempty"`
}

type paymentResponse struct {
	ID        uuid.UUID `json:"id"`
	InvoiceID uuid.UUID `json:"invoice_id"`
	Amount    float64   `json:"amount"`
	PaidAt    time.Time `json:"paid_at"`
	Method    string    `json:"method,omitempty"`
	Note      string    `json:"note,omitempty"`
}

func toPreviewResponse(p invoice.Preview) previewResponse {
	return previewResponse{
		Rows: lo.Map(p.Rows, func(row totals.RowTotals, _ int) rowResponse {
			return rowResponse{
				Gross:    totals.Round2(row.Gross),
				Discount: totals.Round2(row.Discount),
				Net:      totals.Round2(row.Net),
				Tax:      totals.Round2(row.Tax),
				Total:    totals.Round2(row.Total),
			}
		}),
		Totals:   invoice.NewBlock(p.Totals),
		Balance:  totals.Round2(p.Balance),
		Currency: p.Currency,
	}
}

func toResponse(inv *invoice.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:        inv.ID,
		Number:    inv.Number,
		Customer:  inv.Customer,
		Currency:  inv.Currency,
		Status:    inv.Status,
		IssueDate: inv.IssueDate,
		DueDate:   inv.DueDate,
		Items: lo.Map(inv.Items, func(it invoice.Item, _ int) itemResponse {
			return itemResponse{
				Description:    it.Description,
				Quantity:       it.Quantity,
				UnitPrice:      it.UnitPrice,
				TaxRatePercent: it.TaxRatePercent,
				Discount:       invoice.FormOf(it.Discount),
				Total:          totals.Round2(totals.CalcRow(it.LineItem).Total),
			}
		}),
		Discount:           invoice.FormOf(inv.Discount),
		RoundingAdjustment: inv.RoundingAdjustment,
		AmountPaid:         inv.AmountPaid,
		Totals:             invoice.NewBlock(inv.Totals),
		Balance:            inv.Balance(),
		Notes:              inv.Notes,
		CreatedAt:          inv.CreatedAt,
		UpdatedAt:          inv.UpdatedAt,
	}
}

func toResponseList(invs []*invoice.Invoice) []invoiceResponse {
	return lo.Map(invs, func(inv *invoice.Invoice, _ int) invoiceResponse {
		return toResponse(inv)
	})
}

func toPaymentResponse(p *invoice.Payment) paymentResponse {
	return paymentResponse{
		ID:        p.ID,
		InvoiceID: p.InvoiceID,
		Amount:    p.Amount,
		PaidAt:    p.PaidAt,
		Method:    p.Method,
		Note:      p.Note,
	}
}

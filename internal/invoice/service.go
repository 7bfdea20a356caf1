package invoice

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/totals"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	UpdateInvoice(ctx context.Context, inv *Invoice) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	ListInvoices(ctx context.Context, filter ListFilter) ([]*Invoice, error)
	DeleteInvoice(ctx context.Context, id uuid.UUID) error

	CreatePayment(ctx context.Context, p *Payment, settle SettleFunc) error
	ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error)
}

// SettleFunc checks a payment of amount against the invoice state read under
// lock and returns the invoice's status once the payment is applied.
type SettleFunc func(status Status, grandTotal, amountPaid, amount float64) (Status, error)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type CreateParams struct {
	Number    string
	Customer  string
	Status    Status
	IssueDate time.Time
	DueDate   *time.Time
	Notes     string
	Draft     Draft
}

type ListFilter struct {
	Status    *Status
	Customer  *string
	StartDate *time.Time
	EndDate   *time.Time
}

type PaymentParams struct {
	Amount float64
	PaidAt time.Time
	Method string
	Note   string
}

// Preview calculates a draft without touching storage.
func (s *Service) Preview(d Draft) Preview {
	rows := make([]totals.RowTotals, len(d.Items))
	for i, it := range d.Items {
		rows[i] = totals.CalcRow(it.LineItem)
	}

	t := totals.Calculate(d.Input())

	return Preview{
		Rows:     rows,
		Totals:   t,
		Balance:  totals.Balance(t.GrandTotal, d.AmountPaid),
		Currency: d.Currency,
	}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Invoice, error) {
	status := params.Status
	if status == "" {
		status = StatusDraft
	}

	inv := &Invoice{
		Number:             params.Number,
		Customer:           params.Customer,
		Currency:           params.Draft.Currency,
		Status:             status,
		IssueDate:          params.IssueDate,
		DueDate:            params.DueDate,
		Items:              params.Draft.Items,
		Discount:           params.Draft.Discount,
		RoundingAdjustment: params.Draft.RoundingAdjustment,
		AmountPaid:         params.Draft.AmountPaid,
		Notes:              params.Notes,
	}
	inv.Recalculate()

	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Invoice, error) {
	return s.repo.ListInvoices(ctx, filter)
}

// Update recomputes the invoice's totals from scratch, reconciles its status
// with the new balance and stores it.
func (s *Service) Update(ctx context.Context, inv *Invoice) error {
	inv.Recalculate()
	inv.Status = reconcileStatus(inv.Status, inv.Totals.GrandTotal, inv.AmountPaid)

	return s.repo.UpdateInvoice(ctx, inv)
}

// reconcileStatus moves an issued invoice whose payments cover the total to
// paid, and a paid invoice that owes money again back to issued.
func reconcileStatus(status Status, grandTotal, amountPaid float64) Status {
	owed := totals.Cents(totals.Balance(grandTotal, amountPaid)) > 0

	switch {
	case status == StatusIssued && !owed && amountPaid > 0:
		return StatusPaid
	case status == StatusPaid && owed:
		return StatusIssued
	}

	return status
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteInvoice(ctx, id)
}

// RecordPayment registers a payment and marks the invoice paid once the
// balance, in cents, reaches zero. The balance check runs against the invoice
// as locked by the repository, so concurrent payments cannot overdraw it.
func (s *Service) RecordPayment(ctx context.Context, id uuid.UUID, params PaymentParams) (*Payment, error) {
	if math.IsInf(params.Amount, 0) || totals.Cents(params.Amount) <= 0 {
		return nil, ErrInvalidPayment
	}

	paidAt := params.PaidAt
	if paidAt.IsZero() {
		paidAt = s.now()
	}

	p := &Payment{
		InvoiceID: id,
		Amount:    params.Amount,
		PaidAt:    paidAt,
		Method:    params.Method,
		Note:      params.Note,
	}

	if err := s.repo.CreatePayment(ctx, p, settle); err != nil {
		return nil, fmt.Errorf("recording payment: %w", err)
	}

	return p, nil
}

func settle(status Status, grandTotal, amountPaid, amount float64) (Status, error) {
	if status == StatusVoid {
		return "", ErrVoid
	}

	if totals.Cents(amount) > totals.Cents(totals.Balance(grandTotal, amountPaid)) {
		return "", ErrOverpayment
	}

	if totals.Cents(totals.Balance(grandTotal, amountPaid+amount)) == 0 {
		return StatusPaid, nil
	}

	return status, nil
}

func (s *Service) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error) {
	return s.repo.ListPayments(ctx, invoiceID)
}

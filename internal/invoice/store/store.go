package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/totals"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const selectInvoiceColumns = `
	id, number, customer, currency, status, issue_date, due_date,
	discount_kind, discount_value, rounding_adjustment, amount_paid, notes,
	items_subtotal, items_discount_total, items_net_subtotal, invoice_discount_total, tax_total, grand_total,
	created_at, updated_at, deleted_at
`

// scanInvoice reads an invoice row without its items.
// Expected column order matches selectInvoiceColumns.
func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	var statusStr string

	var discountKind sql.NullString

	var discountValue sql.NullFloat64

	var gross, discount, net, invoiceDiscount, tax, grand int64

	if err := s.Scan(
		&inv.ID, &inv.Number, &inv.Customer, &inv.Currency, &statusStr, &inv.IssueDate, &inv.DueDate,
		&discountKind, &discountValue, &inv.RoundingAdjustment, &inv.AmountPaid, &inv.Notes,
		&gross, &discount, &net, &invoiceDiscount, &tax, &grand,
		&inv.CreatedAt, &inv.UpdatedAt, &inv.DeletedAt,
	); err != nil {
		return nil, err
	}

	inv.Status = invoice.Status(statusStr)
	inv.Discount = toDiscount(discountKind, discountValue)
	inv.Totals = totals.Totals{
		ItemsGrossSubtotal:   totals.FromCents(gross),
		ItemsDiscountTotal:   totals.FromCents(discount),
		ItemsNetSubtotal:     totals.FromCents(net),
		InvoiceDiscountTotal: totals.FromCents(invoiceDiscount),
		TaxTotal:             totals.FromCents(tax),
		RoundingAdjustment:   inv.RoundingAdjustment,
		GrandTotal:           totals.FromCents(grand),
	}

	return &inv, nil
}

func toDiscount(kind sql.NullString, value sql.NullFloat64) totals.Discount {
	if !kind.Valid {
		return nil
	}

	return totals.NewDiscount(totals.Kind(kind.String), value.Float64)
}

func fromDiscount(d totals.Discount) (sql.NullString, sql.NullFloat64) {
	if d == nil {
		return sql.NullString{}, sql.NullFloat64{}
	}

	return sql.NullString{String: string(d.Kind()), Valid: true},
		sql.NullFloat64{Float64: d.Value(), Valid: true}
}

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	kind, value := fromDiscount(inv.Discount)

	query := `
		INSERT INTO invoices (
			number, customer, currency, status, issue_date, due_date,
			discount_kind, discount_value, rounding_adjustment, amount_paid, notes,
			items_subtotal, items_discount_total, items_net_subtotal, invoice_discount_total, tax_total, grand_total,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = dbTx.QueryRowContext(ctx, query,
		inv.Number,
		inv.Customer,
		inv.Currency,
		inv.Status,
		inv.IssueDate,
		inv.DueDate,
		kind,
		value,
		inv.RoundingAdjustment,
		inv.AmountPaid,
		inv.Notes,
		totals.Cents(inv.Totals.ItemsGrossSubtotal),
		totals.Cents(inv.Totals.ItemsDiscountTotal),
		totals.Cents(inv.Totals.ItemsNetSubtotal),
		totals.Cents(inv.Totals.InvoiceDiscountTotal),
		totals.Cents(inv.Totals.TaxTotal),
		totals.Cents(inv.Totals.GrandTotal),
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating invoice: %w", err)
	}

	if err := insertItems(ctx, dbTx, inv.ID, inv.Items); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func insertItems(ctx context.Context, dbTx *sql.Tx, invoiceID uuid.UUID, items []invoice.Item) error {
	query := `
		INSERT INTO invoice_items (invoice_id, position, description, quantity, unit_price, tax_rate_percent, discount_kind, discount_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for i, it := range items {
		kind, value := fromDiscount(it.Discount)

		if _, err := dbTx.ExecContext(ctx, query,
			invoiceID, i, it.Description, it.Quantity, it.UnitPrice, it.TaxRatePercent, kind, value,
		); err != nil {
			return fmt.Errorf("creating item %d: %w", i, err)
		}
	}

	return nil
}

func listItems(ctx context.Context, q queryer, invoiceID uuid.UUID) ([]invoice.Item, error) {
	query := `
		SELECT description, quantity, unit_price, tax_rate_percent, discount_kind, discount_value
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY position ASC
	`

	rows, err := q.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []invoice.Item

	for rows.Next() {
		var it invoice.Item

		var kind sql.NullString

		var value sql.NullFloat64

		if err := rows.Scan(&it.Description, &it.Quantity, &it.UnitPrice, &it.TaxRatePercent, &kind, &value); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}

		it.Discount = toDiscount(kind, value)
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating item rows: %w", err)
	}

	return items, nil
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices
		WHERE id = $1 AND deleted_at IS NULL`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	inv.Items, err = listItems(ctx, s.db, inv.ID)
	if err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Store) ListInvoices(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices
		WHERE deleted_at IS NULL`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Customer != nil {
		query += fmt.Sprintf(" AND strpos(lower(customer), lower($%d)) > 0", argIdx)

		args = append(args, *filter.Customer)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND issue_date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND issue_date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY issue_date ASC, number ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invs []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invs = append(invs, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	for _, inv := range invs {
		inv.Items, err = listItems(ctx, s.db, inv.ID)
		if err != nil {
			return nil, err
		}
	}

	return invs, nil
}

// UpdateInvoice rewrites the invoice header, its items and stored totals in one transaction.
func (s *Store) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	kind, value := fromDiscount(inv.Discount)

	query := `
		UPDATE invoices
		SET number = $1, customer = $2, currency = $3, status = $4, issue_date = $5, due_date = $6,
			discount_kind = $7, discount_value = $8, rounding_adjustment = $9, notes = $10,
			items_subtotal = $11, items_discount_total = $12, items_net_subtotal = $13,
			invoice_discount_total = $14, tax_total = $15, grand_total = $16, updated_at = NOW()
		WHERE id = $17 AND deleted_at IS NULL
	`

	res, err := dbTx.ExecContext(ctx, query,
		inv.Number,
		inv.Customer,
		inv.Currency,
		inv.Status,
		inv.IssueDate,
		inv.DueDate,
		kind,
		value,
		inv.RoundingAdjustment,
		inv.Notes,
		totals.Cents(inv.Totals.ItemsGrossSubtotal),
		totals.Cents(inv.Totals.ItemsDiscountTotal),
		totals.Cents(inv.Totals.ItemsNetSubtotal),
		totals.Cents(inv.Totals.InvoiceDiscountTotal),
		totals.Cents(inv.Totals.TaxTotal),
		totals.Cents(inv.Totals.GrandTotal),
		inv.ID,
	)
	if err != nil {
		return fmt.Errorf("updating invoice: %w", err)
	}

	if err := expectRow(res); err != nil {
		return err
	}

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, inv.ID); err != nil {
		return fmt.Errorf("clearing items: %w", err)
	}

	if err := insertItems(ctx, dbTx, inv.ID, inv.Items); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status invoice.Status) error {
	query := `
		UPDATE invoices
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	return expectRow(res)
}

func (s *Store) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE invoices
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	return expectRow(res)
}

// expectRow maps an update that touched no row to invoice.ErrNotFound.
func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return invoice.ErrNotFound
	}

	return nil
}

// CreatePayment locks the invoice row, lets settle check the payment against
// the current paid amount, then inserts the payment and adds it to the
// invoice's paid amount in the same transaction.
func (s *Store) CreatePayment(ctx context.Context, p *invoice.Payment, settle invoice.SettleFunc) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	lockQuery := `
		SELECT status, amount_paid, grand_total
		FROM invoices
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`

	var (
		statusStr  string
		amountPaid float64
		grand      int64
	)

	if err := dbTx.QueryRowContext(ctx, lockQuery, p.InvoiceID).Scan(&statusStr, &amountPaid, &grand); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invoice.ErrNotFound
		}

		return fmt.Errorf("locking invoice: %w", err)
	}

	status, err := settle(invoice.Status(statusStr), totals.FromCents(grand), amountPaid, p.Amount)
	if err != nil {
		return err
	}

	paymentQuery := `
		INSERT INTO invoice_payments (invoice_id, amount, paid_at, method, note, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	if err := dbTx.QueryRowContext(ctx, paymentQuery,
		p.InvoiceID, p.Amount, p.PaidAt, p.Method, p.Note,
	).Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("inserting payment: %w", err)
	}

	invoiceQuery := `
		UPDATE invoices
		SET amount_paid = amount_paid + $1, status = $2, updated_at = NOW()
		WHERE id = $3 AND deleted_at IS NULL AND status <> 'void'
	`

	res, err := dbTx.ExecContext(ctx, invoiceQuery, p.Amount, status, p.InvoiceID)
	if err != nil {
		return fmt.Errorf("updating paid amount: %w", err)
	}

	if err := expectRow(res); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]*invoice.Payment, error) {
	query := `
		SELECT id, invoice_id, amount, paid_at, method, note, created_at
		FROM invoice_payments
		WHERE invoice_id = $1
		ORDER BY paid_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var payments []*invoice.Payment

	for rows.Next() {
		var p invoice.Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.PaidAt, &p.Method, &p.Note, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		payments = append(payments, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment rows: %w", err)
	}

	return payments, nil
}

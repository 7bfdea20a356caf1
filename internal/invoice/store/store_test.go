package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice/store"
)

const (
	lockQuery    = `SELECT status, amount_paid, grand_total FROM invoices WHERE id = \$1 AND deleted_at IS NULL FOR UPDATE`
	paymentQuery = `INSERT INTO invoice_payments`
	paidQuery    = `SET amount_paid = amount_paid \+ \$1, status = \$2, updated_at = NOW\(\) WHERE id = \$3 AND deleted_at IS NULL AND status <> 'void'`
)

func newStore(t *testing.T) (*store.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	return store.New(db), mock
}

func lockedRow(status string, amountPaid float64, grandCents int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"status", "amount_paid", "grand_total"}).AddRow(status, amountPaid, grandCents)
}

func TestStore_CreatePayment(t *testing.T) {
	invoiceID := uuid.New()
	paymentID := uuid.New()
	paidAt := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)

	type settled struct {
		status                         invoice.Status
		grandTotal, amountPaid, amount float64
	}

	type testCase struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		settle    func(got *settled) invoice.SettleFunc
		wantErr   error
		wantSeen  *settled
	}

	recording := func(status invoice.Status, err error) func(got *settled) invoice.SettleFunc {
		return func(got *settled) invoice.SettleFunc {
			return func(s invoice.Status, grandTotal, amountPaid, amount float64) (invoice.Status, error) {
				*got = settled{status: s, grandTotal: grandTotal, amountPaid: amountPaid, amount: amount}
				return status, err
			}
		}
	}

	tests := []testCase{
		{
			name: "IncrementsPaidAmountUnderLock",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(lockQuery).WithArgs(invoiceID).WillReturnRows(lockedRow("issued", 4.8, 1480))
				mock.ExpectQuery(paymentQuery).
					WithArgs(invoiceID, 10.0, paidAt, "transfer", "").
					WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(paymentID.String(), paidAt))
				mock.ExpectExec(paidQuery).
					WithArgs(10.0, invoice.StatusPaid, invoiceID).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			settle:   recording(invoice.StatusPaid, nil),
			wantSeen: &settled{status: invoice.StatusIssued, grandTotal: 14.8, amountPaid: 4.8, amount: 10},
		},
		{
			name: "RejectedBeforeInsert",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(lockQuery).WithArgs(invoiceID).WillReturnRows(lockedRow("paid", 14.8, 1480))
				mock.ExpectRollback()
			},
			settle:  recording("", invoice.ErrOverpayment),
			wantErr: invoice.ErrOverpayment,
		},
		{
			name: "MissingInvoice",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(lockQuery).WithArgs(invoiceID).
					WillReturnRows(sqlmock.NewRows([]string{"status", "amount_paid", "grand_total"}))
				mock.ExpectRollback()
			},
			settle:  recording(invoice.StatusPaid, nil),
			wantErr: invoice.ErrNotFound,
		},
		{
			name: "VoidedMeanwhile",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(lockQuery).WithArgs(invoiceID).WillReturnRows(lockedRow("issued", 0, 1480))
				mock.ExpectQuery(paymentQuery).
					WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(paymentID.String(), paidAt))
				mock.ExpectExec(paidQuery).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			settle:  recording(invoice.StatusIssued, nil),
			wantErr: invoice.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newStore(t)
			tt.setupMock(mock)

			p := &invoice.Payment{InvoiceID: invoiceID, Amount: 10, PaidAt: paidAt, Method: "transfer"}

			var seen settled

			err := s.CreatePayment(context.Background(), p, tt.settle(&seen))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, paymentID, p.ID)
			assert.Equal(t, *tt.wantSeen, seen)
		})
	}
}

func TestStore_UpdateStatus(t *testing.T) {
	type testCase struct {
		name    string
		rows    int64
		wantErr error
	}

	tests := []testCase{
		{name: "Updated", rows: 1},
		{name: "Missing", rows: 0, wantErr: invoice.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()

			s, mock := newStore(t)
			mock.ExpectExec(`UPDATE invoices SET status = \$1`).
				WithArgs(invoice.StatusVoid, id).
				WillReturnResult(sqlmock.NewResult(0, tt.rows))

			err := s.UpdateStatus(context.Background(), id, invoice.StatusVoid)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestStore_DeleteInvoice(t *testing.T) {
	type testCase struct {
		name    string
		rows    int64
		execErr error
		wantErr error
	}

	tests := []testCase{
		{name: "Deleted", rows: 1},
		{name: "MissingOrAlreadyDeleted", rows: 0, wantErr: invoice.ErrNotFound},
		{name: "Failure", execErr: errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()

			s, mock := newStore(t)

			exp := mock.ExpectExec(`SET deleted_at = NOW\(\) WHERE id = \$1 AND deleted_at IS NULL`).WithArgs(id)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.rows))
			}

			err := s.DeleteInvoice(context.Background(), id)

			switch {
			case tt.execErr != nil:
				assert.ErrorIs(t, err, tt.execErr)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

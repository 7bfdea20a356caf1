package view

import (
	"context"
	"time"

	"github.com/MrJamesThe3rd/invoicer/internal/totals"
)

const dbTimeout = 5 * time.Second

// FormatMoney formats an amount with two decimals and an optional currency code.
func FormatMoney(v float64, currency string) string {
	s := totals.Format(v)
	if currency != "" {
		s += " " + currency
	}

	return s
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

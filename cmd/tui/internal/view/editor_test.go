package view

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/totals"
)

func typeInto(t *testing.T, m EditorModel, field int, text string) EditorModel {
	t.Helper()

	m.setFocus(field)

	for _, r := range text {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})

		var ok bool
		m, ok = next.(EditorModel)
		require.True(t, ok)
	}

	return m
}

func rowField(row, col int) int {
	return headerFields + row*rowCols + col
}

func TestEditor_RecalculatesOnEveryKeystroke(t *testing.T) {
	m := NewEditorModel(nil)
	assert.Zero(t, m.totals.GrandTotal)

	m = typeInto(t, m, rowField(0, colQty), "2")
	m = typeInto(t, m, rowField(0, colPrice), "1")
	assert.Equal(t, 2.0, m.totals.GrandTotal)

	m = typeInto(t, m, rowField(0, colPrice), "0")
	assert.Equal(t, 20.0, m.totals.GrandTotal)

	m = typeInto(t, m, rowField(0, colTax), "10")
	m = typeInto(t, m, rowField(0, colDiscount), "10%")

	footer := headerFields + len(m.rows)*rowCols
	m = typeInto(t, m, footer+ftrDiscount, "5")
	m = typeInto(t, m, footer+ftrPaid, "4,80")

	assert.Equal(t, 20.0, m.totals.ItemsGrossSubtotal)
	assert.InDelta(t, 2.0, m.totals.ItemsDiscountTotal, 1e-9)
	assert.InDelta(t, 18.0, m.totals.ItemsNetSubtotal, 1e-9)
	assert.InDelta(t, 1.8, m.totals.TaxTotal, 1e-9)
	assert.InDelta(t, 14.8, m.totals.GrandTotal, 1e-9)
	assert.InDelta(t, 10.0, m.balance, 1e-9)

	view := m.View()
	assert.Contains(t, view, "14.80")
	assert.Contains(t, view, "10.00")
}

func TestEditor_Rows(t *testing.T) {
	m := NewEditorModel(nil)

	m = typeInto(t, m, rowField(0, colQty), "1")
	m = typeInto(t, m, rowField(0, colPrice), "10")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m = next.(EditorModel)
	require.Len(t, m.rows, 2)
	assert.Equal(t, rowField(1, colDesc), m.focus)

	m = typeInto(t, m, rowField(1, colQty), "3")
	m = typeInto(t, m, rowField(1, colPrice), "5")
	assert.Equal(t, 25.0, m.totals.GrandTotal)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m = next.(EditorModel)
	require.Len(t, m.rows, 1)
	assert.Equal(t, 10.0, m.totals.GrandTotal)

	// The last row cannot be removed.
	m.setFocus(rowField(0, colQty))
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m = next.(EditorModel)
	assert.Len(t, m.rows, 1)
}

func TestEditor_RoundingFloorsTotal(t *testing.T) {
	m := NewEditorModel(nil)

	m = typeInto(t, m, rowField(0, colQty), "1")
	m = typeInto(t, m, rowField(0, colPrice), "10")

	footer := headerFields + len(m.rows)*rowCols
	m = typeInto(t, m, footer+ftrRounding, "-1000")

	assert.Equal(t, 0.0, m.totals.GrandTotal)
	assert.Equal(t, -1000.0, m.totals.RoundingAdjustment)
}

func TestEditor_FocusWraps(t *testing.T) {
	m := NewEditorModel(nil)
	assert.Equal(t, hdrNumber, m.focus)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(EditorModel)

	assert.Equal(t, m.count()-1, m.focus)
	assert.True(t, m.footer[ftrPaid].Focused())
	assert.False(t, m.header[hdrNumber].Focused())
}

func TestNewInvoiceEditorModel(t *testing.T) {
	inv := &invoice.Invoice{
		Number:   "2026/0001",
		Customer: "Acme",
		Currency: "EUR",
		Items: []invoice.Item{
			{
				Description: "Beans",
				LineItem:    totals.LineItem{Quantity: 2, UnitPrice: 10, TaxRatePercent: 10, Discount: totals.Rate(10)},
			},
		},
		Discount:   totals.Amount(5),
		AmountPaid: 4.8,
		IssueDate:  time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
	inv.Recalculate()

	m := NewInvoiceEditorModel(nil, inv)

	assert.Equal(t, "Edit Invoice 2026/0001", m.Title())
	assert.Equal(t, inv.Totals, m.totals)
	assert.InDelta(t, 10.0, m.balance, 1e-9)

	d := m.Draft()
	assert.Equal(t, "EUR", d.Currency)
	assert.Equal(t, totals.Amount(5), d.Discount)
	require.Len(t, d.Items, 1)
	assert.Equal(t, totals.Rate(10), d.Items[0].Discount)
	assert.Equal(t, 4.8, d.AmountPaid)
}

func TestEditor_StoredInvoicePaidIsReadOnly(t *testing.T) {
	inv := &invoice.Invoice{
		Number:     "2026/0001",
		Customer:   "Acme",
		Items:      []invoice.Item{{LineItem: totals.LineItem{Quantity: 1, UnitPrice: 20}}},
		AmountPaid: 5,
	}
	inv.Recalculate()

	m := NewInvoiceEditorModel(nil, inv)

	for range m.count() + 1 {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
		m = next.(EditorModel)

		assert.False(t, m.footer[ftrPaid].Focused())
	}

	m.setFocus(hdrNumber)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(EditorModel)
	assert.True(t, m.footer[ftrRounding].Focused())

	assert.Equal(t, 5.0, m.Draft().AmountPaid)
	assert.InDelta(t, 15.0, m.balance, 1e-9)
	assert.Contains(t, m.View(), "5.00")
}

func TestParseDiscount(t *testing.T) {
	type testCase struct {
		name string
		in   string
		want totals.Discount
	}

	tests := []testCase{
		{name: "Empty", in: "  ", want: nil},
		{name: "Rate", in: "10%", want: totals.Rate(10)},
		{name: "RateWithComma", in: "2,5 %", want: totals.Rate(2.5)},
		{name: "Amount", in: "5,00", want: totals.Amount(5)},
		{name: "Garbage", in: "abc", want: totals.Amount(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDiscount(tt.in))
		})
	}
}

func TestDiscountText(t *testing.T) {
	assert.Equal(t, "", discountText(nil))
	assert.Equal(t, "12.5%", discountText(totals.Rate(12.5)))
	assert.Equal(t, "5.00", discountText(totals.Amount(5)))
}

package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/totals"
)

const (
	colDesc = iota
	colQty
	colPrice
	colTax
	colDiscount
	rowCols
)

const (
	hdrNumber = iota
	hdrCustomer
	hdrCurrency
	headerFields
)

const (
	ftrDiscount = iota
	ftrRounding
	ftrPaid
	footerFields
)

var (
	columnTitles = [rowCols]string{"Description", "Qty", "Price", "Tax %", "Discount"}
	columnWidths = [rowCols]int{28, 7, 10, 6, 9}
)

// EditorModel edits an invoice draft. Totals are recalculated from the
// inputs after every keystroke.
type EditorModel struct {
	CommonModel
	invoiceService *invoice.Service

	editing *invoice.Invoice

	header []textinput.Model
	rows   [][]textinput.Model
	footer []textinput.Model
	focus  int

	rowTotals []totals.RowTotals
	totals    totals.Totals
	balance   float64

	status string
	err    error
}

func NewEditorModel(svc *invoice.Service) EditorModel {
	return NewDraftEditorModel(svc, nil)
}

// NewDraftEditorModel opens the editor on unsaved items, e.g. from an import.
func NewDraftEditorModel(svc *invoice.Service, items []invoice.Item) EditorModel {
	m := EditorModel{
		invoiceService: svc,
		header: []textinput.Model{
			newInput("2026/0001", 20),
			newInput("Customer", 30),
			newInput("EUR", 5),
		},
		footer: []textinput.Model{
			newInput("10% or 5.00", 12),
			newInput("0.00", 12),
			newInput("0.00", 12),
		},
	}

	for _, it := range items {
		m.rows = append(m.rows, itemRow(it))
	}

	if len(m.rows) == 0 {
		m.addRow()
	}

	m.header[hdrNumber].Focus()
	m.recalculate()

	return m
}

// NewInvoiceEditorModel opens the editor on a stored invoice.
func NewInvoiceEditorModel(svc *invoice.Service, inv *invoice.Invoice) EditorModel {
	m := NewDraftEditorModel(svc, inv.Items)
	m.editing = inv

	m.header[hdrNumber].SetValue(inv.Number)
	m.header[hdrCustomer].SetValue(inv.Customer)
	m.header[hdrCurrency].SetValue(inv.Currency)
	m.footer[ftrDiscount].SetValue(discountText(inv.Discount))
	m.footer[ftrRounding].SetValue(numberText(inv.RoundingAdjustment))
	m.recalculate()

	return m
}

func newInput(placeholder string, width int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.Width = width

	return ti
}

func itemRow(it invoice.Item) []textinput.Model {
	row := make([]textinput.Model, rowCols)
	for c := range row {
		row[c] = newInput(columnTitles[c], columnWidths[c])
	}

	row[colDesc].SetValue(it.Description)
	row[colQty].SetValue(numberText(it.Quantity))
	row[colPrice].SetValue(numberText(it.UnitPrice))
	row[colTax].SetValue(numberText(it.TaxRatePercent))
	row[colDiscount].SetValue(discountText(it.Discount))

	return row
}

func numberText(v float64) string {
	if v == 0 {
		return ""
	}

	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseDiscount reads "10%" as a rate and any other number as an amount.
func parseDiscount(s string) totals.Discount {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if v, ok := strings.CutSuffix(s, "%"); ok {
		return totals.Rate(invoice.ParseNumber(v))
	}

	return totals.Amount(invoice.ParseNumber(s))
}

func discountText(d totals.Discount) string {
	switch d := d.(type) {
	case totals.Rate:
		return strconv.FormatFloat(float64(d), 'f', -1, 64) + "%"
	case totals.Amount:
		return totals.Format(float64(d))
	}

	return ""
}

func (m EditorModel) Title() string {
	if m.editing != nil {
		return "Edit Invoice " + m.editing.Number
	}

	return "New Invoice"
}

func (m EditorModel) ShortHelp() string {
	return "Tab/Enter: next | Shift+Tab: prev | Ctrl+N: add row | Ctrl+D: delete row | Ctrl+S: save | Esc: back"
}

func (m EditorModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case editorSaveMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = ""

			return m, nil
		}

		m.err = nil
		m.editing = msg.inv
		m.status = fmt.Sprintf("Saved invoice %s (%s).", msg.inv.Number, msg.inv.Status)

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "tab", "enter", "down":
			return m, m.setFocus(m.focus + 1)
		case "shift+tab", "up":
			return m, m.setFocus(m.focus - 1)
		case "ctrl+n":
			m.addRow()
			return m, m.setFocus(headerFields + (len(m.rows)-1)*rowCols)
		case "ctrl+d":
			cmd := m.removeRow()
			m.recalculate()

			return m, cmd
		case "ctrl+s":
			return m, m.saveCmd()
		}
	}

	var cmd tea.Cmd

	in := m.input(m.focus)
	*in, cmd = in.Update(msg)
	m.recalculate()

	return m, cmd
}

func (m *EditorModel) count() int {
	return headerFields + len(m.rows)*rowCols + m.footerCount()
}

// footerCount leaves out the paid field on stored invoices, whose paid amount
// only changes through recorded payments.
func (m *EditorModel) footerCount() int {
	if m.editing != nil {
		return ftrPaid
	}

	return footerFields
}

func (m *EditorModel) input(i int) *textinput.Model {
	if i < headerFields {
		return &m.header[i]
	}

	i -= headerFields
	if i < len(m.rows)*rowCols {
		return &m.rows[i/rowCols][i%rowCols]
	}

	return &m.footer[i-len(m.rows)*rowCols]
}

func (m *EditorModel) setFocus(i int) tea.Cmd {
	m.input(m.focus).Blur()
	m.focus = (i + m.count()) % m.count()

	return m.input(m.focus).Focus()
}

// focusedRow returns the line item under the cursor, or -1.
func (m *EditorModel) focusedRow() int {
	i := m.focus - headerFields
	if i < 0 || i >= len(m.rows)*rowCols {
		return -1
	}

	return i / rowCols
}

func (m *EditorModel) addRow() {
	row := make([]textinput.Model, rowCols)
	for c := range row {
		row[c] = newInput(columnTitles[c], columnWidths[c])
	}

	m.rows = append(m.rows, row)
}

func (m *EditorModel) removeRow() tea.Cmd {
	r := m.focusedRow()
	if r < 0 || len(m.rows) == 1 {
		return nil
	}

	m.input(m.focus).Blur()
	m.rows = append(m.rows[:r], m.rows[r+1:]...)
	m.focus = headerFields + min(r, len(m.rows)-1)*rowCols

	return m.input(m.focus).Focus()
}

// Draft reads the current inputs. Unparseable numbers count as zero.
func (m EditorModel) Draft() invoice.Draft {
	items := make([]invoice.Item, 0, len(m.rows))
	for _, row := range m.rows {
		items = append(items, invoice.Item{
			Description: strings.TrimSpace(row[colDesc].Value()),
			LineItem: totals.LineItem{
				Quantity:       invoice.ParseNumber(row[colQty].Value()),
				UnitPrice:      invoice.ParseNumber(row[colPrice].Value()),
				TaxRatePercent: invoice.ParseNumber(row[colTax].Value()),
				Discount:       parseDiscount(row[colDiscount].Value()),
			},
		})
	}

	paid := invoice.ParseNumber(m.footer[ftrPaid].Value())
	if m.editing != nil {
		paid = m.editing.AmountPaid
	}

	return invoice.Draft{
		Items:              items,
		Discount:           parseDiscount(m.footer[ftrDiscount].Value()),
		RoundingAdjustment: invoice.ParseNumber(m.footer[ftrRounding].Value()),
		AmountPaid:         paid,
		Currency:           strings.ToUpper(strings.TrimSpace(m.header[hdrCurrency].Value())),
	}
}

func (m *EditorModel) recalculate() {
	d := m.Draft()

	m.rowTotals = make([]totals.RowTotals, len(d.Items))
	for i, it := range d.Items {
		m.rowTotals[i] = totals.CalcRow(it.LineItem)
	}

	m.totals = totals.Calculate(d.Input())
	m.balance = totals.Balance(m.totals.GrandTotal, d.AmountPaid)
}

type editorSaveMsg struct {
	inv *invoice.Invoice
	err error
}

func (m EditorModel) saveCmd() tea.Cmd {
	number := strings.TrimSpace(m.header[hdrNumber].Value())
	customer := strings.TrimSpace(m.header[hdrCustomer].Value())

	if number == "" || customer == "" {
		return func() tea.Msg {
			return editorSaveMsg{err: errors.New("number and customer are required")}
		}
	}

	draft := m.Draft()
	draft.Items = lo.Filter(draft.Items, func(it invoice.Item, _ int) bool {
		return it.Description != "" || it.Quantity != 0 || it.UnitPrice != 0
	})

	editing := m.editing

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if editing == nil {
			inv, err := m.invoiceService.Create(ctx, invoice.CreateParams{
				Number:    number,
				Customer:  customer,
				IssueDate: time.Now(),
				Draft:     draft,
			})

			return editorSaveMsg{inv: inv, err: err}
		}

		// Payments own AmountPaid on stored invoices.
		inv := *editing
		inv.Number = number
		inv.Customer = customer
		inv.Currency = draft.Currency
		inv.Items = draft.Items
		inv.Discount = draft.Discount
		inv.RoundingAdjustment = draft.RoundingAdjustment

		if err := m.invoiceService.Update(ctx, &inv); err != nil {
			return editorSaveMsg{err: err}
		}

		return editorSaveMsg{inv: &inv}
	}
}

var (
	labelStyle  = lipgloss.NewStyle().Faint(true)
	headerStyle = lipgloss.NewStyle().Bold(true)
	panelStyle  = lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))
)

func (m EditorModel) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(m.Title()) + "\n\n")
	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n\n",
		labelStyle.Render("Number"), m.header[hdrNumber].View(),
		labelStyle.Render("Customer"), m.header[hdrCustomer].View(),
		labelStyle.Render("Currency"), m.header[hdrCurrency].View(),
	))

	cells := make([]string, 0, rowCols+1)
	for c, title := range columnTitles {
		cells = append(cells, lipgloss.NewStyle().Width(columnWidths[c]+1).Render(title))
	}

	cells = append(cells, "Total")
	b.WriteString(labelStyle.Render(strings.Join(cells, " ")) + "\n")

	for r, row := range m.rows {
		cells = cells[:0]
		for c := range row {
			cells = append(cells, lipgloss.NewStyle().Width(columnWidths[c]+1).Render(row[c].View()))
		}

		cells = append(cells, totals.Format(m.rowTotals[r].Total))
		b.WriteString(strings.Join(cells, " ") + "\n")
	}

	paid := m.footer[ftrPaid].View()
	if m.editing != nil {
		paid = totals.Format(m.editing.AmountPaid) + labelStyle.Render(" (payments)")
	}

	b.WriteString(fmt.Sprintf("\n%s %s   %s %s   %s %s\n",
		labelStyle.Render("Invoice discount"), m.footer[ftrDiscount].View(),
		labelStyle.Render("Rounding"), m.footer[ftrRounding].View(),
		labelStyle.Render("Paid"), paid,
	))

	content := lipgloss.JoinHorizontal(lipgloss.Top, b.String(), panelStyle.Render(m.totalsView()))

	footer := labelStyle.Render(m.ShortHelp())
	if m.err != nil {
		footer = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("Error: "+m.err.Error()) + "\n" + footer
	} else if m.status != "" {
		footer = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(m.status) + "\n" + footer
	}

	return lipgloss.NewStyle().Padding(1).Render(content + "\n\n" + footer)
}

// totalsView lists the totals block. "Items subtotal" is the gross sum before
// line discounts, matching the items_subtotal field of stored invoices.
func (m EditorModel) totalsView() string {
	currency := strings.ToUpper(strings.TrimSpace(m.header[hdrCurrency].Value()))
	t := m.totals

	lines := []struct {
		label string
		value float64
	}{
		{"Items subtotal", t.ItemsGrossSubtotal},
		{"Item discounts", -t.ItemsDiscountTotal},
		{"Net subtotal", t.ItemsNetSubtotal},
		{"Invoice discount", -t.InvoiceDiscountTotal},
		{"Tax", t.TaxTotal},
		{"Rounding", t.RoundingAdjustment},
		{"Grand total", t.GrandTotal},
		{"Balance", m.balance},
	}

	var b strings.Builder
	for i, l := range lines {
		if i == len(lines)-2 {
			b.WriteString(strings.Repeat("─", 30) + "\n")
		}

		fmt.Fprintf(&b, "%-16s %13s\n", l.label, FormatMoney(l.value, currency))
	}

	return strings.TrimRight(b.String(), "\n")
}

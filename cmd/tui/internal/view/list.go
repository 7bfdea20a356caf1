package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/totals"
)

type listState int

const (
	listStateBrowse listState = iota
	listStatePayment
)

var statusFilters = []*invoice.Status{
	nil,
	new(invoice.StatusDraft),
	new(invoice.StatusIssued),
	new(invoice.StatusPaid),
	new(invoice.StatusVoid),
}

// paymentForm holds the huh bindings. It lives behind a pointer so the
// bound fields survive the model being copied between updates.
type paymentForm struct {
	amount string
	method string
	note   string
}

type ListModel struct {
	CommonModel
	invoiceService *invoice.Service

	state    listState
	table    table.Model
	invoices []*invoice.Invoice
	form     *huh.Form
	payment  *paymentForm

	statusFilterIdx int
	period          Period

	loading bool
	err     error
	status  string
}

func NewListModel(svc *invoice.Service) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Number", Width: 14},
		{Title: "Customer", Width: 28},
		{Title: "Status", Width: 8},
		{Title: "Total", Width: 14},
		{Title: "Balance", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{
		invoiceService: svc,
		table:          t,
		loading:        true,
	}
}

func (m ListModel) Title() string { return "Invoices" }

func (m ListModel) ShortHelp() string {
	if m.state == listStatePayment {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | e: edit | p: record payment | i: issue | x: void | s: status | d: period | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.invoices = msg.invoices
		m.refreshTable()

		return m, nil

	case listActionMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(5, msg.Height-10))
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStatePayment:
		return m.updatePayment(msg)
	}

	return m, nil
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % len(statusFilters)
			return m, m.loadCmd()
		case "d":
			m.period = m.period.Next()
			return m, m.loadCmd()
		case "e":
			if inv := m.selected(); inv != nil {
				return m, func() tea.Msg { return EditInvoiceMsg{Invoice: inv} }
			}
		case "p":
			return m.enterPaymentMode()
		case "i":
			return m, m.statusCmd(invoice.StatusIssued)
		case "x":
			return m, m.statusCmd(invoice.StatusVoid)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) selected() *invoice.Invoice {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.invoices) {
		return nil
	}

	return m.invoices[idx]
}

func (m ListModel) enterPaymentMode() (tea.Model, tea.Cmd) {
	inv := m.selected()
	if inv == nil {
		return m, nil
	}

	if inv.Status == invoice.StatusVoid || inv.Balance() == 0 {
		m.status = fmt.Sprintf("Invoice %s has nothing to pay.", inv.Number)
		return m, nil
	}

	m.payment = &paymentForm{amount: totals.Format(inv.Balance()), method: "transfer"}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Amount").
				Value(&m.payment.amount).
				Validate(func(s string) error {
					if invoice.ParseNumber(s) <= 0 {
						return errors.New("amount must be a positive number")
					}

					return nil
				}),

			huh.NewSelect[string]().
				Key("method").
				Title("Method").
				Options(
					huh.NewOption("Bank transfer", "transfer"),
					huh.NewOption("Card", "card"),
					huh.NewOption("Cash", "cash"),
				).
				Value(&m.payment.method),

			huh.NewInput().
				Key("note").
				Title("Note").
				Value(&m.payment.note),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStatePayment
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updatePayment(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.paymentCmd()
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading invoices...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	statusLabel := "All"
	if s := statusFilters[m.statusFilterIdx]; s != nil {
		statusLabel = strings.ToUpper(string(*s)[:1]) + string(*s)[1:]
	}

	header := fmt.Sprintf(
		"Filter: [s] Status: %s | [d] Period: %s",
		activeStyle(statusLabel),
		activeStyle(m.period.String()),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == listStatePayment && m.form != nil {
		title := "Record Payment"
		if inv := m.selected(); inv != nil {
			title = fmt.Sprintf("Record Payment\n\n%s: balance %s", inv.Number, FormatMoney(inv.Balance(), inv.Currency))
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(title + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m ListModel) filter() invoice.ListFilter {
	filter := invoice.ListFilter{Status: statusFilters[m.statusFilterIdx]}

	if start, end, ok := m.period.Range(time.Now()); ok {
		filter.StartDate = &start
		filter.EndDate = &end
	}

	return filter
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.invoices))
	for _, inv := range m.invoices {
		rows = append(rows, table.Row{
			FormatDate(inv.IssueDate),
			inv.Number,
			inv.Customer,
			string(inv.Status),
			FormatMoney(inv.Totals.GrandTotal, inv.Currency),
			FormatMoney(inv.Balance(), inv.Currency),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadListMsg struct {
	invoices []*invoice.Invoice
	err      error
}

func (m ListModel) loadCmd() tea.Cmd {
	filter := m.filter()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		invs, err := m.invoiceService.List(ctx, filter)

		return loadListMsg{invoices: invs, err: err}
	}
}

type listActionMsg struct {
	status string
	err    error
}

func (m ListModel) statusCmd(status invoice.Status) tea.Cmd {
	inv := m.selected()
	if inv == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.invoiceService.UpdateStatus(ctx, inv.ID, status); err != nil {
			return listActionMsg{err: err}
		}

		return listActionMsg{status: fmt.Sprintf("Invoice %s marked %s.", inv.Number, status)}
	}
}

func (m ListModel) paymentCmd() tea.Cmd {
	inv := m.selected()
	if inv == nil || m.payment == nil {
		return nil
	}

	params := invoice.PaymentParams{
		Amount: invoice.ParseNumber(m.payment.amount),
		Method: m.payment.method,
		Note:   strings.TrimSpace(m.payment.note),
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		p, err := m.invoiceService.RecordPayment(ctx, inv.ID, params)
		if err != nil {
			return listActionMsg{err: err}
		}

		return listActionMsg{status: fmt.Sprintf("Recorded %s on %s.", FormatMoney(p.Amount, inv.Currency), inv.Number)}
	}
}

package view

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/invoicer/internal/catalog"
	"github.com/MrJamesThe3rd/invoicer/internal/importer"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/totals"
)

const importTimeout = 30 * time.Second

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStatePreview
	importStateResult
)

type ImportModel struct {
	CommonModel
	importService  *importer.Service
	catalogService *catalog.Service

	state      importState
	filePicker filepicker.Model

	items  []invoice.Item
	totals totals.Totals

	status string
	err    error
}

func NewImportModel(impSvc *importer.Service, catSvc *catalog.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		importService:  impSvc,
		catalogService: catSvc,
		filePicker:     fp,
	}
}

func (m ImportModel) Title() string { return "Import Line Items" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStatePreview {
		return "Enter: open in editor | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc:
			return m.handleEsc()
		case tea.KeyEnter:
			if m.state == importStatePreview {
				items := m.items
				return m, func() tea.Msg { return EditDraftMsg{Items: items} }
			}
		}

	case importResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		if len(msg.items) == 0 {
			m.state = importStateResult
			m.status = "No line items found."

			return m, nil
		}

		m.items = msg.items
		m.totals = totals.Calculate(invoice.Draft{Items: msg.items}.Input())
		m.state = importStatePreview

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStatePreview, importStateResult:
		m.state = importStateFilePick
		m.items = nil
		m.err = nil
		m.status = ""

		return m, nil
	}

	return m, Back
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select a CSV file with line items:\n\n%s", m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStatePreview:
		return m.viewPreview()
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewPreview() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d line items\n\n", len(m.items))

	for _, it := range m.items {
		row := totals.CalcRow(it.LineItem)
		fmt.Fprintf(&b, "%-30.30s %8s x %10s  %5s%%  %12s\n",
			it.Description,
			numberText(it.Quantity),
			totals.Format(it.UnitPrice),
			numberText(it.TaxRatePercent),
			totals.Format(row.Total),
		)
	}

	fmt.Fprintf(&b, "\nItems subtotal %s | Net %s | Tax %s | Total %s",
		totals.Format(m.totals.ItemsGrossSubtotal),
		totals.Format(m.totals.ItemsNetSubtotal),
		totals.Format(m.totals.TaxTotal),
		totals.Format(m.totals.GrandTotal),
	)

	return lipgloss.NewStyle().Padding(1).Render(b.String() + "\n\n(Enter to open in editor, Esc to cancel)")
}

func (m ImportModel) viewResult() string {
	color := lipgloss.Color("46")
	if m.err != nil {
		color = lipgloss.Color("196")
	}

	return lipgloss.NewStyle().Padding(2).Render(
		lipgloss.NewStyle().Foreground(color).Render(m.status) + "\n\n(Esc to go back)",
	)
}

// Messages

type importResultMsg struct {
	items []invoice.Item
	err   error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		params, err := m.importService.Import(importer.FormatCSV, f)
		if err != nil {
			return importResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		return importResultMsg{items: m.catalogService.Apply(ctx, params)}
	}
}

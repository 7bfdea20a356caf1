package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/invoicer/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/invoicer/internal/catalog"
	catalogStore "github.com/MrJamesThe3rd/invoicer/internal/catalog/store"
	"github.com/MrJamesThe3rd/invoicer/internal/config"
	"github.com/MrJamesThe3rd/invoicer/internal/database"
	"github.com/MrJamesThe3rd/invoicer/internal/export"
	"github.com/MrJamesThe3rd/invoicer/internal/importer"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/invoicer/internal/invoice/store"
)

type model struct {
	appName        string
	invoiceService *invoice.Service
	catalogService *catalog.Service
	importService  *importer.Service
	exportService  *export.Service

	currentView View

	editorView view.EditorModel
	listView   view.ListModel
	importView view.ImportModel
	exportView view.ExportModel
}

type View int

const (
	ViewMenu   View = 0
	ViewEditor View = 1
	ViewList   View = 2
	ViewImport View = 3
	ViewExport View = 4
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	invSvc := invoice.NewService(invoiceStore.New(db))
	catSvc := catalog.NewService(catalogStore.New(db))
	impSvc := importer.NewService()
	expSvc := export.NewService(invSvc, cfg.Export.Issuer)

	return model{
		appName:        cfg.App.Name,
		invoiceService: invSvc,
		catalogService: catSvc,
		importService:  impSvc,
		exportService:  expSvc,
		currentView:    ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewEditor
				m.editorView = view.NewEditorModel(m.invoiceService)

				return m, m.editorView.Init()
			case "2":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.invoiceService)

				return m, m.listView.Init()
			case "3":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.importService, m.catalogService)

				return m, m.importView.Init()
			case "4":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService)

				return m, m.exportView.Init()
			}
		}
	case view.EditDraftMsg:
		m.currentView = ViewEditor
		m.editorView = view.NewDraftEditorModel(m.invoiceService, msg.Items)

		return m, m.editorView.Init()
	case view.EditInvoiceMsg:
		m.currentView = ViewEditor
		m.editorView = view.NewInvoiceEditorModel(m.invoiceService, msg.Invoice)

		return m, m.editorView.Init()
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewEditor:
		var newModel tea.Model
		newModel, cmd = m.editorView.Update(msg)
		m.editorView = newModel.(view.EditorModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			m.appName + "\n\n" +
				"1. New Invoice\n" +
				"2. Invoices\n" +
				"3. Import Line Items\n" +
				"4. Export Invoices\n\n" +
				"q. Quit",
		)
	case ViewEditor:
		return m.editorView.View()
	case ViewList:
		return m.listView.View()
	case ViewImport:
		return m.importView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}

package view

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views.
type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// EditDraftMsg asks the root model to open the editor on unsaved items.
type EditDraftMsg struct {
	Items []invoice.Item
}

// EditInvoiceMsg asks the root model to open the editor on a stored invoice.
type EditInvoiceMsg struct {
	Invoice *invoice.Invoice
}

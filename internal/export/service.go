package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/totals"
)

// Item represents a single exported invoice with its local file path.
type Item struct {
	Invoice  *invoice.Invoice
	FilePath string
}

// Service renders invoices to PDF files.
type Service struct {
	invoices *invoice.Service
	issuer   string
}

// NewService creates a new export Service. issuer is printed in every PDF header.
func NewService(invoiceService *invoice.Service, issuer string) *Service {
	return &Service{
		invoices: invoiceService,
		issuer:   issuer,
	}
}

// Export renders a PDF for every invoice matching the filter into outputDir.
// Void invoices are listed but not rendered.
func (s *Service) Export(ctx context.Context, filter invoice.ListFilter, outputDir string) ([]Item, error) {
	invoices, err := s.invoices.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	items := make([]Item, 0, len(invoices))

	for _, inv := range invoices {
		item := Item{Invoice: inv}

		if inv.Status != invoice.StatusVoid {
			path := filepath.Join(outputDir, fileName(inv))
			if err := s.WritePDF(path, inv); err != nil {
				return nil, fmt.Errorf("rendering invoice %s: %w", inv.Number, err)
			}

			item.FilePath = path
		}

		items = append(items, item)
	}

	return items, nil
}

// fileName builds "YYYYMMDD_<number>.pdf" with the number reduced to safe characters.
func fileName(inv *invoice.Invoice) string {
	safe := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, inv.Number)

	return fmt.Sprintf("%s_%s.pdf", inv.IssueDate.Format("20060102"), safe)
}

// GenerateSummary creates a plain-text listing of the exported invoices.
func (s *Service) GenerateSummary(items []Item) string {
	var (
		sb    strings.Builder
		grand float64
	)

	for _, item := range items {
		inv := item.Invoice

		fileStatus := "not rendered"
		if item.FilePath != "" {
			fileStatus = filepath.Base(item.FilePath)
		}

		sb.WriteString(fmt.Sprintf("* %s | %s | %s | %s %s | balance %s | %s\n",
			inv.IssueDate.Format("2006-01-02"),
			inv.Number,
			inv.Customer,
			totals.Format(inv.Totals.GrandTotal),
			inv.Currency,
			totals.Format(inv.Balance()),
			fileStatus,
		))

		if inv.Status != invoice.StatusVoid {
			grand += inv.Totals.GrandTotal
		}
	}

	sb.WriteString(fmt.Sprintf("\n%d invoice(s), total %s\n", len(items), totals.Format(grand)))

	return sb.String()
}

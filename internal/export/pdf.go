package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/totals"
)

var itemColumns = []struct {
	title string
	width float64
	align string
}{
	{"Description", 70, "L"},
	{"Qty", 15, "R"},
	{"Unit price", 25, "R"},
	{"Discount", 20, "R"},
	{"Tax %", 15, "R"},
	{"Total", 30, "R"},
}

// RenderPDF writes inv as a one-invoice PDF document to w.
func (s *Service) RenderPDF(w io.Writer, inv *invoice.Invoice) error {
	pdf := s.build(inv)
	return pdf.Output(w)
}

// WritePDF renders inv to a file at path.
func (s *Service) WritePDF(path string, inv *invoice.Invoice) error {
	pdf := s.build(inv)
	return pdf.OutputFileAndClose(path)
}

func (s *Service) build(inv *invoice.Invoice) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(tr("Invoice "+inv.Number), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(s.issuer))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, tr("Invoice: "+inv.Number))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr("Customer: "+inv.Customer))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Issued: "+inv.IssueDate.Format("2006-01-02"))
	pdf.Ln(6)

	if inv.DueDate != nil {
		pdf.Cell(0, 6, "Due: "+inv.DueDate.Format("2006-01-02"))
		pdf.Ln(6)
	}

	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)

	for _, col := range itemColumns {
		pdf.CellFormat(col.width, 7, col.title, "B", 0, col.align, false, 0, "")
	}

	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)

	for _, it := range inv.Items {
		row := totals.CalcRow(it.LineItem)

		cells := []string{
			tr(it.Description),
			fmt.Sprintf("%g", it.Quantity),
			totals.Format(it.UnitPrice),
			discountLabel(it.Discount),
			fmt.Sprintf("%g", it.TaxRatePercent),
			totals.Format(row.Total),
		}

		for i, col := range itemColumns {
			pdf.CellFormat(col.width, 6, cells[i], "", 0, col.align, false, 0, "")
		}

		pdf.Ln(-1)
	}

	pdf.Ln(4)

	t := inv.Totals
	summary := []struct {
		label string
		value float64
	}{
		{"Items subtotal", t.ItemsGrossSubtotal},
		{"Item discounts", t.ItemsDiscountTotal},
		{"Invoice discount", t.InvoiceDiscountTotal},
		{"Tax", t.TaxTotal},
		{"Rounding", t.RoundingAdjustment},
		{"Total", t.GrandTotal},
		{"Paid", inv.AmountPaid},
		{"Balance", inv.Balance()},
	}

	for _, line := range summary {
		if line.label == "Total" {
			pdf.SetFont("Arial", "B", 11)
		} else {
			pdf.SetFont("Arial", "", 10)
		}

		pdf.CellFormat(145, 6, line.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, totals.Format(line.value)+" "+tr(inv.Currency), "", 1, "R", false, 0, "")
	}

	if inv.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 5, tr(inv.Notes), "", "L", false)
	}

	return pdf
}

func discountLabel(d totals.Discount) string {
	switch d := d.(type) {
	case totals.Rate:
		return fmt.Sprintf("%g%%", float64(d))
	case totals.Amount:
		return totals.Format(float64(d))
	}

	return ""
}

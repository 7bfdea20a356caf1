package csvitems

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	enc "github.com/MrJamesThe3rd/invoicer/internal/encoding"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/totals"
)

// Parser reads line-item CSV files and produces item params.
// It auto-detects the layout by matching column headers against known profiles,
// trying each profile's field separator in turn.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]invoice.ItemParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	tried := make(map[rune]bool)

	for _, prof := range profiles {
		if tried[prof.Comma] {
			continue
		}

		tried[prof.Comma] = true

		rows, err := readRows(data, prof.Comma)
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows, prof.Comma)
		if profile == nil {
			continue
		}

		return parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
	}

	return nil, fmt.Errorf("no matching item layout found: expected description, quantity and unit price columns")
}

func readRows(data []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return rows, nil
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

// detectProfile scans rows for a header that matches a profile using comma.
// Returns the matched profile, column index map, and header row index.
func detectProfile(rows [][]string, comma rune) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.TrimSpace(cell)
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if profiles[i].Comma != comma {
				continue
			}

			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

// matchesProfile checks if all required columns of a profile are present.
func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts items from data rows using the matched profile.
// headerRowNum is the 0-based index of the header in the original file (for error messages).
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]invoice.ItemParams, error) {
	descIdx := cols[p.DescCol]
	qtyIdx := cols[p.QtyCol]
	priceIdx := cols[p.PriceCol]
	taxIdx := optionalCol(cols, p.TaxCol)
	discountIdx := optionalCol(cols, p.DiscountCol)

	var items []invoice.ItemParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 1 // 1-based

		desc := cellValue(row, descIdx)
		if desc == "" {
			continue
		}

		// Labels such as "Total" carry no quantity or price.
		if cellValue(row, qtyIdx) == "" && cellValue(row, priceIdx) == "" {
			continue
		}

		qty, err := parseNumber(cellValue(row, qtyIdx), p.DecimalComma)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid quantity: %w", rowNum, err)
		}

		price, err := parseNumber(cellValue(row, priceIdx), p.DecimalComma)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid unit price: %w", rowNum, err)
		}

		taxRate, taxKnown := 0.0, false

		if s := cellValue(row, taxIdx); s != "" {
			taxRate, err = parseNumber(s, p.DecimalComma)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid tax rate: %w", rowNum, err)
			}

			taxKnown = true
		}

		discount, err := parseDiscount(cellValue(row, discountIdx), p.DecimalComma)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid discount: %w", rowNum, err)
		}

		items = append(items, invoice.ItemParams{
			Item: invoice.Item{
				Description: desc,
				LineItem: totals.LineItem{
					Quantity:       qty,
					UnitPrice:      price,
					TaxRatePercent: taxRate,
					Discount:       discount,
				},
			},
			RawDescription: desc,
			TaxRateKnown:   taxKnown,
		})
	}

	return items, nil
}

func optionalCol(cols colIndex, name string) int {
	if name == "" {
		return -1
	}

	idx, ok := cols[name]
	if !ok {
		return -1
	}

	return idx
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

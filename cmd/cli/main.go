package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v2"

	"github.com/MrJamesThe3rd/invoicer/internal/importer"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/totals"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "invoicer",
		Usage: "calculate invoice totals without a database",
		Commands: []*cli.Command{
			{
				Name:      "calc",
				Usage:     "calculate the totals of a draft given as JSON",
				ArgsUsage: "[draft.json]  (reads stdin when omitted or \"-\")",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "print the totals block as JSON"},
				},
				Action: calc,
			},
			{
				Name:      "import",
				Usage:     "read line items from a CSV file and calculate their totals",
				ArgsUsage: "<items.csv>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "currency", Usage: "currency code printed next to amounts"},
					&cli.BoolFlag{Name: "json", Usage: "print items and totals as JSON"},
				},
				Action: importItems,
			},
		},
	}
}

type result struct {
	Items    []invoice.ItemForm `json:"items,omitempty"`
	Totals   invoice.Block      `json:"totals"`
	Balance  float64            `json:"balance"`
	Currency string             `json:"currency,omitempty"`
}

func calc(c *cli.Context) error {
	in := c.App.Reader

	if path := c.Args().First(); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening draft: %w", err)
		}
		defer f.Close()

		in = f
	}

	var form invoice.DraftForm
	if err := json.NewDecoder(in).Decode(&form); err != nil {
		return fmt.Errorf("decoding draft: %w", err)
	}

	draft := form.Draft()

	return render(c.App.Writer, draft, invoice.NewService(nil).Preview(draft), c.Bool("json"))
}

func importItems(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("missing CSV file argument")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening csv: %w", err)
	}
	defer f.Close()

	params, err := importer.NewService().Import(importer.FormatCSV, f)
	if err != nil {
		return err
	}

	draft := invoice.Draft{Currency: strings.ToUpper(c.String("currency"))}
	for _, p := range params {
		draft.Items = append(draft.Items, p.Item)
	}

	return render(c.App.Writer, draft, invoice.NewService(nil).Preview(draft), c.Bool("json"))
}

func render(w io.Writer, draft invoice.Draft, p invoice.Preview, asJSON bool) error {
	if asJSON {
		res := result{
			Totals:   invoice.NewBlock(p.Totals),
			Balance:  totals.Round2(p.Balance),
			Currency: p.Currency,
		}

		for _, it := range draft.Items {
			res.Items = append(res.Items, invoice.ItemForm{
				Description:    it.Description,
				Quantity:       invoice.Number(it.Quantity),
				UnitPrice:      invoice.Number(it.UnitPrice),
				TaxRatePercent: invoice.Number(it.TaxRatePercent),
				Discount:       invoice.FormOf(it.Discount),
			})
		}

		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(res)
	}

	if len(draft.Items) > 0 {
		items := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("#", "Description", "Qty", "Price", "Tax %", "Discount", "Net", "Tax", "Total")

		for i, it := range draft.Items {
			row := p.Rows[i]
			items.Row(
				strconv.Itoa(i+1),
				it.Description,
				strconv.FormatFloat(it.Quantity, 'f', -1, 64),
				totals.Format(it.UnitPrice),
				strconv.FormatFloat(it.TaxRatePercent, 'f', -1, 64),
				totals.Format(row.Discount),
				totals.Format(row.Net),
				totals.Format(row.Tax),
				totals.Format(row.Total),
			)
		}

		if _, err := fmt.Fprintln(w, items.Render()); err != nil {
			return err
		}
	}

	b := invoice.NewBlock(p.Totals)
	summary := table.New().
		Border(lipgloss.HiddenBorder()).
		Rows(
			[]string{"Items subtotal", totals.Format(b.ItemsSubtotal)},
			[]string{"Item discounts", totals.Format(b.ItemsDiscountTotal)},
			[]string{"Net subtotal", totals.Format(b.ItemsNetSubtotal)},
			[]string{"Invoice discount", totals.Format(b.InvoiceDiscountTotal)},
			[]string{"Tax", totals.Format(b.TaxTotal)},
			[]string{"Rounding", totals.Format(b.RoundingAdjustment)},
			[]string{"Grand total", totals.Format(b.GrandTotal) + currencySuffix(p.Currency)},
			[]string{"Balance", totals.Format(p.Balance) + currencySuffix(p.Currency)},
		)

	_, err := fmt.Fprintln(w, summary.Render())

	return err
}

func currencySuffix(c string) string {
	if c == "" {
		return ""
	}

	return " " + c
}

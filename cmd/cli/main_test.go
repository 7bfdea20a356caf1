package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const draftJSON = `{
	"items": [{"description": "Beans", "quantity": "2", "unit_price": 10, "tax_rate_percent": 10,
		"discount": {"kind": "rate", "value": 10}}],
	"discount": {"kind": "amount", "value": 5},
	"amount_paid": 4.8,
	"currency": "EUR"
}`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	app := newApp()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &out
	app.ErrWriter = &out

	err := app.Run(append([]string{"invoicer"}, args...))

	return out.String(), err
}

func TestCalc_JSON(t *testing.T) {
	out, err := run(t, draftJSON, "calc", "--json")
	require.NoError(t, err)

	var got struct {
		Totals  map[string]float64 `json:"totals"`
		Balance float64            `json:"balance"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, 20.0, got.Totals["items_subtotal"])
	assert.Equal(t, 2.0, got.Totals["items_discount_total"])
	assert.Equal(t, 18.0, got.Totals["items_net_subtotal"])
	assert.Equal(t, 5.0, got.Totals["invoice_discount_total"])
	assert.Equal(t, 1.8, got.Totals["tax_total"])
	assert.Equal(t, 14.8, got.Totals["grand_total"])
	assert.Equal(t, 10.0, got.Balance)
}

func TestCalc_Table(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.json")
	require.NoError(t, os.WriteFile(path, []byte(draftJSON), 0o600))

	out, err := run(t, "", "calc", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Beans")
	assert.Contains(t, out, "19.80")
	assert.Contains(t, out, "14.80 EUR")
	assert.Contains(t, out, "10.00 EUR")
}

func TestCalc_InvalidJSON(t *testing.T) {
	_, err := run(t, "{", "calc")
	assert.Error(t, err)
}

func TestImport(t *testing.T) {
	csv := "Descrição;Quantidade;Preço unitário;IVA;Desconto\n" +
		"Consultoria;2;1.250,00;23;10%\n" +
		"Portes;1;4,50;;\n"

	path := filepath.Join(t.TempDir(), "items.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	out, err := run(t, "", "import", "--json", "--currency", "eur", path)
	require.NoError(t, err)

	var got struct {
		Items    []map[string]any   `json:"items"`
		Totals   map[string]float64 `json:"totals"`
		Currency string             `json:"currency"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	require.Len(t, got.Items, 2)
	assert.Equal(t, "EUR", got.Currency)
	// 2500 - 10% = 2250, +23% = 2767.50; 4.50 untaxed
	assert.Equal(t, 2504.5, got.Totals["items_subtotal"])
	assert.Equal(t, 2254.5, got.Totals["items_net_subtotal"])
	assert.Equal(t, 2772.0, got.Totals["grand_total"])
}

func TestImport_MissingFile(t *testing.T) {
	_, err := run(t, "", "import")
	assert.Error(t, err)
}

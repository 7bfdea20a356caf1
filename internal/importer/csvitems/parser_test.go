package csvitems_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/invoicer/internal/importer/csvitems"
	"github.com/MrJamesThe3rd/invoicer/internal/totals"
)

func TestParser_Portuguese(t *testing.T) {
	csv := `Orçamento 2026-014;;;;
Cliente;ACME LDA;;;

Descrição;Quantidade;Preço unitário;IVA;Desconto
Consultoria;2;1.250,00;23;10%
Alojamento VPS;12;9,90;23;5,00
Portes;1;4,50;;
;;;;
Total;;;;2.621,22
`

	items, err := csvitems.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "Consultoria", items[0].Description)
	assert.Equal(t, 2.0, items[0].Quantity)
	assert.Equal(t, 1250.0, items[0].UnitPrice)
	assert.Equal(t, 23.0, items[0].TaxRatePercent)
	assert.True(t, items[0].TaxRateKnown)
	assert.Equal(t, totals.Rate(10), items[0].Discount)

	assert.Equal(t, 9.9, items[1].UnitPrice)
	assert.Equal(t, totals.Amount(5), items[1].Discount)

	assert.Equal(t, "Portes", items[2].RawDescription)
	assert.False(t, items[2].TaxRateKnown)
	assert.Nil(t, items[2].Discount)
}

func TestParser_English(t *testing.T) {
	csv := "Description,Quantity,Unit price,Tax %,Discount\n" +
		"Design work,3,\"1,200.50\",20,\n" +
		"Stock photo,1,$15.00,,15%\n"

	items, err := csvitems.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, 1200.5, items[0].UnitPrice)
	assert.Equal(t, 20.0, items[0].TaxRatePercent)
	assert.Nil(t, items[0].Discount)

	assert.Equal(t, 15.0, items[1].UnitPrice)
	assert.Equal(t, totals.Rate(15), items[1].Discount)
	assert.False(t, items[1].TaxRateKnown)
}

func TestParser_Latin1(t *testing.T) {
	csv := "Descrição;Quantidade;Preço unitário;IVA\nCafé;10;0,80;13\n"

	encoded, err := charmap.Windows1252.NewEncoder().String(csv)
	require.NoError(t, err)

	items, err := csvitems.NewParser().Parse(bytes.NewReader([]byte(encoded)))
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "Café", items[0].Description)
	assert.Equal(t, 0.8, items[0].UnitPrice)
}

func TestParser_Errors(t *testing.T) {
	type testCase struct {
		name    string
		csv     string
		wantLen int
		wantErr string
	}

	tests := []testCase{
		{
			name:    "Empty",
			csv:     "",
			wantLen: 0,
		},
		{
			name:    "HeaderOnly",
			csv:     "Item,Qty,Price\n",
			wantLen: 0,
		},
		{
			name:    "UnknownLayout",
			csv:     "foo;bar\n1;2\n",
			wantErr: "no matching item layout",
		},
		{
			name:    "BadQuantity",
			csv:     "Item,Qty,Price\nWidget,lots,2\n",
			wantErr: "row 2: invalid quantity",
		},
		{
			name:    "BadTax",
			csv:     "Item,Qty,Price,VAT\nWidget,1,2,abc\n",
			wantErr: "row 2: invalid tax rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := csvitems.NewParser().Parse(strings.NewReader(tt.csv))

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Len(t, items, tt.wantLen)
		})
	}
}

package totals_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/invoicer/internal/totals"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 14.8, totals.Round2(14.799999999))
	assert.Equal(t, 0.3, totals.Round2(0.1+0.2))
	assert.Equal(t, 2.68, totals.Round2(2.675))
	assert.Equal(t, -1.01, totals.Round2(-1.005))
	assert.Equal(t, 0.0, totals.Round2(math.NaN()))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "14.80", totals.Format(14.8))
	assert.Equal(t, "0.00", totals.Format(0))
	assert.Equal(t, "1234.57", totals.Format(1234.567))
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(1480), totals.Cents(14.8))
	assert.Equal(t, int64(30), totals.Cents(0.1+0.2))
	assert.Equal(t, int64(-100000), totals.Cents(-1000))
	assert.Equal(t, 14.8, totals.FromCents(1480))
}

func TestTotals_RoundedKeepsFullPrecisionUntilDisplay(t *testing.T) {
	items := make([]totals.LineItem, 0, 100)
	for range 100 {
		items = append(items, totals.LineItem{Quantity: 1, UnitPrice: 0.333, TaxRatePercent: 23})
	}

	got := totals.Calculate(totals.Input{Items: items})

	// Rounding each row first would give 100 * 0.33 = 33.00 net.
	assert.Equal(t, 33.3, got.Rounded().ItemsNetSubtotal)
	assert.Equal(t, 40.96, got.Rounded().GrandTotal)
}

package store_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/catalog/store"
)

// Patterns are matched as literal substrings, so "%" and "_" in a learned
// pattern only ever match themselves.
const matchQuery = `WHERE raw_pattern <> '' AND strpos\(lower\(\$1\), lower\(raw_pattern\)\) > 0`

func TestStore_FindMatch(t *testing.T) {
	type testCase struct {
		name     string
		raw      string
		rows     *sqlmock.Rows
		wantDesc string
		wantRate *float64
		wantNil  bool
	}

	tests := []testCase{
		{
			name: "Match",
			raw:  "100% ARABICA 1KG",
			rows: sqlmock.NewRows([]string{"raw_pattern", "preferred_description", "tax_rate_percent"}).
				AddRow("100% arabica", "Arabica beans", 6.0),
			wantDesc: "Arabica beans",
			wantRate: new(6.0),
		},
		{
			name: "MatchWithoutRate",
			raw:  "hosting_eu",
			rows: sqlmock.NewRows([]string{"raw_pattern", "preferred_description", "tax_rate_percent"}).
				AddRow("hosting_eu", "Hosting", nil),
			wantDesc: "Hosting",
		},
		{
			name:    "NoMatch",
			raw:     "anything",
			rows:    sqlmock.NewRows([]string{"raw_pattern", "preferred_description", "tax_rate_percent"}),
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery(matchQuery).WithArgs(tt.raw).WillReturnRows(tt.rows)

			got, err := store.New(db).FindMatch(context.Background(), tt.raw)
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())

			if tt.wantNil {
				assert.Nil(t, got)
				return
			}

			require.NotNil(t, got)
			assert.Equal(t, tt.wantDesc, got.Description)
			assert.Equal(t, tt.wantRate, got.TaxRatePercent)
		})
	}
}

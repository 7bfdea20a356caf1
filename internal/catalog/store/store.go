package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/invoicer/internal/catalog"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindMatch(ctx context.Context, rawDescription string) (*catalog.Entry, error) {
	query := `
		SELECT raw_pattern, preferred_description, tax_rate_percent
		FROM catalog_entries
		WHERE raw_pattern <> '' AND strpos(lower($1), lower(raw_pattern)) > 0
		ORDER BY LENGTH(raw_pattern) DESC, created_at DESC
		LIMIT 1
	`

	var (
		e       catalog.Entry
		taxRate sql.NullFloat64
	)

	err := s.db.QueryRowContext(ctx, query, rawDescription).Scan(&e.RawPattern, &e.Description, &taxRate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("finding match: %w", err)
	}

	if taxRate.Valid {
		e.TaxRatePercent = &taxRate.Float64
	}

	return &e, nil
}

func (s *Store) CreateEntry(ctx context.Context, e catalog.Entry) error {
	query := `
		INSERT INTO catalog_entries (raw_pattern, preferred_description, tax_rate_percent, created_at)
		VALUES ($1, $2, $3, NOW())
	`

	_, err := s.db.ExecContext(ctx, query, e.RawPattern, e.Description, e.TaxRatePercent)
	if err != nil {
		return fmt.Errorf("creating entry: %w", err)
	}

	return nil
}

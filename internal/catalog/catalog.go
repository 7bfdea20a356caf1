package catalog

import (
	"context"
	"log/slog"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

// Entry is a learned preference for line items whose description contains RawPattern.
type Entry struct {
	RawPattern     string
	Description    string
	TaxRatePercent *float64
}

//go:generate mockgen -source=catalog.go -destination=repository_mock.go -package=catalog
type Repository interface {
	FindMatch(ctx context.Context, rawDescription string) (*Entry, error)
	CreateEntry(ctx context.Context, e Entry) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the longest learned pattern contained in rawDescription.
// Returns nil if nothing matches.
func (s *Service) Suggest(ctx context.Context, rawDescription string) (*Entry, error) {
	return s.repo.FindMatch(ctx, rawDescription)
}

// Learn remembers a preferred description, and optionally a default tax rate, for a raw pattern.
func (s *Service) Learn(ctx context.Context, e Entry) error {
	return s.repo.CreateEntry(ctx, e)
}

// Apply resolves imported items against the catalog. A match replaces the
// description; its tax rate is used only when the source left it empty.
// Lookup failures keep the item as imported.
func (s *Service) Apply(ctx context.Context, params []invoice.ItemParams) []invoice.Item {
	items := make([]invoice.Item, 0, len(params))

	for _, p := range params {
		item := p.Item

		entry, err := s.repo.FindMatch(ctx, p.RawDescription)
		if err != nil {
			slog.Warn("catalog lookup failed", "description", p.RawDescription, "error", err)
		}

		if entry != nil {
			item.Description = entry.Description

			if !p.TaxRateKnown && entry.TaxRatePercent != nil {
				item.TaxRatePercent = *entry.TaxRatePercent
			}
		}

		items = append(items, item)
	}

	return items
}

package importer

import (
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/invoicer/internal/importer/csvitems"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

type Service struct {
	csvImporter Importer
}

func NewService() *Service {
	return &Service{
		csvImporter: csvitems.NewParser(),
	}
}

func (s *Service) Import(format Format, r io.Reader) ([]invoice.ItemParams, error) {
	var importer Importer

	switch format {
	case FormatCSV, "":
		importer = s.csvImporter
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	return importer.Parse(r)
}

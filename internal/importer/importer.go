package importer

import (
	"io"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

type Format string

const (
	FormatCSV Format = "csv"
)

type Importer interface {
	Parse(r io.Reader) ([]invoice.ItemParams, error)
}

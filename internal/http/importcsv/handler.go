package importcsv

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/MrJamesThe3rd/invoicer/internal/catalog"
	"github.com/MrJamesThe3rd/invoicer/internal/importer"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

type Handler struct {
	importSvc  *importer.Service
	invoiceSvc *invoice.Service
	catalogSvc *catalog.Service
}

func NewHandler(importSvc *importer.Service, invoiceSvc *invoice.Service, catalogSvc *catalog.Service) *Handler {
	return &Handler{
		importSvc:  importSvc,
		invoiceSvc: invoiceSvc,
		catalogSvc: catalogSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type importResponse struct {
	Imported int                `json:"imported"`
	Items    []invoice.ItemForm `json:"items"`
	Totals   invoice.Block      `json:"totals"`
	Currency string             `json:"currency,omitempty"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	format := importer.Format(r.FormValue("format"))

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(format, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	items := h.catalogSvc.Apply(r.Context(), params)

	preview := h.invoiceSvc.Preview(invoice.Draft{
		Items:    items,
		Currency: r.FormValue("currency"),
	})

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(importResponse{
		Imported: len(items),
		Items:    lo.Map(items, func(it invoice.Item, _ int) invoice.ItemForm { return toItemForm(it) }),
		Totals:   invoice.NewBlock(preview.Totals),
		Currency: preview.Currency,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// toItemForm returns the item in the same shape the preview endpoint accepts,
// so clients can post it back unchanged.
func toItemForm(it invoice.Item) invoice.ItemForm {
	return invoice.ItemForm{
		Description:    it.Description,
		Quantity:       invoice.Number(it.Quantity),
		UnitPrice:      invoice.Number(it.UnitPrice),
		TaxRatePercent: invoice.Number(it.TaxRatePercent),
		Discount:       invoice.FormOf(it.Discount),
	}
}

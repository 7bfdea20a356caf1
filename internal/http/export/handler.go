package export

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/MrJamesThe3rd/invoicer/internal/export"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/totals"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.metadata)
	r.Post("/download", h.download)
}

type exportRequest struct {
	Status    *invoice.Status `json:"status,omitempty"`
	Customer  *string         `json:"customer,omitempty"`
	StartDate *time.Time      `json:"start_date,omitempty"`
	EndDate   *time.Time      `json:"end_date,omitempty"`
}

func (req exportRequest) filter() invoice.ListFilter {
	return invoice.ListFilter{
		Status:    req.Status,
		Customer:  req.Customer,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
}

type invoiceResponse struct {
	ID         uuid.UUID      `json:"id"`
	Number     string         `json:"number"`
	Customer   string         `json:"customer"`
	Status     invoice.Status `json:"status"`
	IssueDate  time.Time      `json:"issue_date"`
	Currency   string         `json:"currency"`
	GrandTotal float64        `json:"grand_total"`
	Balance    float64        `json:"balance"`
	File       string         `json:"file,omitempty"`
}

type exportMetadataResponse struct {
	Invoices []invoiceResponse `json:"invoices"`
	Summary  string            `json:"summary"`
}

func toInvoiceResponse(item export.Item) invoiceResponse {
	inv := item.Invoice

	resp := invoiceResponse{
		ID:         inv.ID,
		Number:     inv.Number,
		Customer:   inv.Customer,
		Status:     inv.Status,
		IssueDate:  inv.IssueDate,
		Currency:   inv.Currency,
		GrandTotal: totals.Round2(inv.Totals.GrandTotal),
		Balance:    inv.Balance(),
	}

	if item.FilePath != "" {
		resp.File = filepath.Base(item.FilePath)
	}

	return resp
}

func (h *Handler) metadata(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tmpDir, err := os.MkdirTemp("", "invoicer-export-*")
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tmpDir)

	items, err := h.svc.Export(r.Context(), req.filter(), tmpDir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(exportMetadataResponse{
		Invoices: lo.Map(items, func(item export.Item, _ int) invoiceResponse { return toInvoiceResponse(item) }),
		Summary:  h.svc.GenerateSummary(items),
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tmpDir, err := os.MkdirTemp("", "invoicer-export-*")
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tmpDir)

	items, err := h.svc.Export(r.Context(), req.filter(), tmpDir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	summary := h.svc.GenerateSummary(items)
	if err := os.WriteFile(filepath.Join(tmpDir, "summary.txt"), []byte(summary), 0o644); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"invoices_%s.zip\"", time.Now().Format("20060102")))

	zipWriter := zip.NewWriter(w)
	defer zipWriter.Close()

	err = filepath.Walk(tmpDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		relPath, _ := filepath.Rel(tmpDir, path)

		zf, err := zipWriter.Create(relPath)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(zf, f)

		return err
	})
	if err != nil {
		slog.Error("failed to create zip", "error", err)
	}
}

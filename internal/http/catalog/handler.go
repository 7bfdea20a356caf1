package catalog

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/MrJamesThe3rd/invoicer/internal/catalog"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

type Handler struct {
	svc      *catalog.Service
	validate *validator.Validate
}

func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type suggestResponse struct {
	RawDescription string   `json:"raw_description"`
	Description    string   `json:"description,omitempty"`
	TaxRatePercent *float64 `json:"tax_rate_percent,omitempty"`
	Matched        bool     `json:"matched"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	rawDesc := r.URL.Query().Get("raw_description")
	if rawDesc == "" {
		http.Error(w, "raw_description query parameter is required", http.StatusBadRequest)
		return
	}

	entry, err := h.svc.Suggest(r.Context(), rawDesc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := suggestResponse{RawDescription: rawDesc}
	if entry != nil {
		resp.Description = entry.Description
		resp.TaxRatePercent = entry.TaxRatePercent
		resp.Matched = true
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type learnRequest struct {
	RawPattern     string          `json:"raw_pattern" validate:"required"`
	Description    string          `json:"description" validate:"required"`
	TaxRatePercent *invoice.Number `json:"tax_rate_percent,omitempty"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req.RawPattern = strings.TrimSpace(req.RawPattern)
	req.Description = strings.TrimSpace(req.Description)

	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "raw_pattern and description are required", http.StatusBadRequest)
		return
	}

	entry := catalog.Entry{RawPattern: req.RawPattern, Description: req.Description}
	if req.TaxRatePercent != nil {
		entry.TaxRatePercent = new(float64(*req.TaxRatePercent))
	}

	if err := h.svc.Learn(r.Context(), entry); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

package invoice

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/export"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

type Handler struct {
	svc      *invoice.Service
	exporter *export.Service
	validate *validator.Validate
}

func NewHandler(svc *invoice.Service, exporter *export.Service) *Handler {
	return &Handler{
		svc:      svc,
		exporter: exporter,
		validate: validator.New(),
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/preview", h.preview)
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}/status", h.updateStatus)
	r.Post("/{id}/payments", h.recordPayment)
	r.Get("/{id}/payments", h.listPayments)
	r.Get("/{id}/pdf", h.pdf)
}

// invoiceRequest carries the invoice header next to the monetary draft.
// Header fields are validated; draft numbers are coerced and never rejected.
type invoiceRequest struct {
	Number    string         `json:"number" validate:"required,max=64"`
	Customer  string         `json:"customer" validate:"required,max=255"`
	Status    invoice.Status `json:"status" validate:"omitempty,oneof=draft issued"`
	IssueDate *time.Time     `json:"issue_date,omitempty"`
	DueDate   *time.Time     `json:"due_date,omitempty"`
	Notes     string         `json:"notes" validate:"max=2000"`
	invoice.DraftForm
}

type statusRequest struct {
	Status invoice.Status `json:"status" validate:"required,oneof=draft issued paid void"`
}

type paymentRequest struct {
	Amount invoice.Number `json:"amount"`
	PaidAt *time.Time     `json:"paid_at,omitempty"`
	Method string         `json:"method" validate:"max=64"`
	Note   string         `json:"note" validate:"max=500"`
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	var form invoice.DraftForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, toPreviewResponse(h.svc.Preview(form.Draft())))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if !h.decode(w, r, &req) {
		return
	}

	issueDate := time.Now()
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}

	inv, err := h.svc.Create(r.Context(), invoice.CreateParams{
		Number:    strings.TrimSpace(req.Number),
		Customer:  strings.TrimSpace(req.Customer),
		Status:    req.Status,
		IssueDate: issueDate,
		DueDate:   req.DueDate,
		Notes:     req.Notes,
		Draft:     req.Draft(),
	})
	if err != nil {
		slog.Error("failed to create invoice", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusCreated, toResponse(inv))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := invoice.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = new(invoice.Status(s))
	}

	if s := r.URL.Query().Get("customer"); s != "" {
		filter.Customer = new(s)
	}

	if s := r.URL.Query().Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = new(t)
		}
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.EndDate = new(t)
		}
	}

	invs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(invs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, toResponse(inv))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if !h.decode(w, r, &req) {
		return
	}

	inv, ok := h.load(w, r)
	if !ok {
		return
	}

	draft := req.Draft()

	inv.Number = strings.TrimSpace(req.Number)
	inv.Customer = strings.TrimSpace(req.Customer)
	inv.Currency = draft.Currency
	inv.Items = draft.Items
	inv.Discount = draft.Discount
	inv.RoundingAdjustment = draft.RoundingAdjustment
	inv.DueDate = req.DueDate
	inv.Notes = req.Notes

	if req.IssueDate != nil {
		inv.IssueDate = *req.IssueDate
	}

	if err := h.svc.Update(r.Context(), inv); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(inv))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req statusRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.svc.UpdateStatus(r.Context(), id, req.Status); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req paymentRequest
	if !h.decode(w, r, &req) {
		return
	}

	params := invoice.PaymentParams{
		Amount: float64(req.Amount),
		Method: req.Method,
		Note:   req.Note,
	}
	if req.PaidAt != nil {
		params.PaidAt = *req.PaidAt
	}

	p, err := h.svc.RecordPayment(r.Context(), id, params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPaymentResponse(p))
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	payments, err := h.svc.ListPayments(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		resp = append(resp, toPaymentResponse(p))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.RenderPDF(&buf, inv); err != nil {
		slog.Error("failed to render pdf", "invoice", inv.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("inline; filename=%q", strings.ReplaceAll(inv.Number, "/", "_")+".pdf"))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write pdf", "error", err)
	}
}

// decode reads and validates a JSON body, writing the error response itself.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return false
		}

		resp := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			resp[strings.ToLower(fe.Field())] = fe.Tag()
		}

		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": resp})

		return false
	}

	return true
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*invoice.Invoice, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return nil, false
	}

	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}

	return inv, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, invoice.ErrNotFound):
		http.Error(w, "invoice not found", http.StatusNotFound)
	case errors.Is(err, invoice.ErrInvalidPayment), errors.Is(err, invoice.ErrOverpayment):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, invoice.ErrVoid):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		slog.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

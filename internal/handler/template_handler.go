package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/cotiza/backend/internal/costing"
	"github.com/cotiza/backend/internal/model"
	"github.com/cotiza/backend/internal/repository"
	"github.com/cotiza/backend/internal/service"
)

// TemplateHandler exposes quotation templates and their service items.
// Every item mutation responds with the refreshed template snapshot, so the
// client never needs a follow-up reload to see consistent totals.
type TemplateHandler struct {
	svc service.TemplateService
}

// NewTemplateHandler creates a TemplateHandler.
func NewTemplateHandler(svc service.TemplateService) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

// List handles GET /api/templates.
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	templates, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, err, "template list failed")
		return
	}
	if templates == nil {
		templates = []*model.Template{}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"templates": templates})
}

// Create handles POST /api/templates.
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var input model.TemplateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBadRequest(w, "invalid_json")
		return
	}
	if input.Name == "" {
		writeBadRequest(w, "name_required")
		return
	}

	t, err := h.svc.Create(r.Context(), input)
	if err != nil {
		writeError(w, err, "template create failed")
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(t)
}

// Get handles GET /api/templates/{id}.
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	t, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "template get failed")
		return
	}
	_ = json.NewEncoder(w).Encode(t)
}

// Update handles PUT /api/templates/{id}.
func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var input model.TemplateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBadRequest(w, "invalid_json")
		return
	}
	if input.Name == "" {
		writeBadRequest(w, "name_required")
		return
	}

	t, err := h.svc.Update(r.Context(), r.PathValue("id"), input)
	if err != nil {
		writeError(w, err, "template update failed")
		return
	}
	_ = json.NewEncoder(w).Encode(t)
}

// PatchDiscount handles PATCH /api/templates/{id}/discount.
func (h *TemplateHandler) PatchDiscount(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req struct {
		Discount decimal.Decimal `json:"discount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid_json")
		return
	}

	t, err := h.svc.UpdateDiscount(r.Context(), r.PathValue("id"), req.Discount)
	if err != nil {
		writeError(w, err, "discount update failed")
		return
	}
	_ = json.NewEncoder(w).Encode(t)
}

// Delete handles DELETE /api/templates/{id}.
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		w.Header().Set("Content-Type", "application/json")
		writeError(w, err, "template delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddItem handles POST /api/templates/{id}/items.
func (h *TemplateHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var input model.ServiceItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBadRequest(w, "invalid_json")
		return
	}
	if input.Name == "" {
		writeBadRequest(w, "name_required")
		return
	}

	t, err := h.svc.AddItem(r.Context(), r.PathValue("id"), input)
	if err != nil {
		writeError(w, err, "item add failed")
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(t)
}

// UpdateItem handles PATCH /api/templates/{id}/items/{itemID}.
func (h *TemplateHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var patch model.ServiceItemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeBadRequest(w, "invalid_json")
		return
	}
	if patch.IsEmpty() {
		writeBadRequest(w, "empty_patch")
		return
	}

	t, err := h.svc.UpdateItem(r.Context(), r.PathValue("id"), r.PathValue("itemID"), patch)
	if err != nil {
		writeError(w, err, "item update failed")
		return
	}
	_ = json.NewEncoder(w).Encode(t)
}

// DeleteItem handles DELETE /api/templates/{id}/items/{itemID}.
func (h *TemplateHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	t, err := h.svc.DeleteItem(r.Context(), r.PathValue("id"), r.PathValue("itemID"))
	if err != nil {
		writeError(w, err, "item delete failed")
		return
	}
	_ = json.NewEncoder(w).Encode(t)
}

func writeBadRequest(w http.ResponseWriter, code string) {
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

// writeError maps the domain error taxonomy onto HTTP statuses. Stale item
// costs are an internal invariant violation and deliberately fall through to
// the generic 500.
func writeError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found"})
	case errors.Is(err, service.ErrConcurrentModification):
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "concurrent_modification"})
	case errors.Is(err, costing.ErrInvalidQuantity):
		writeBadRequest(w, "invalid_quantity")
	case errors.Is(err, costing.ErrInvalidFormulaParameters):
		writeBadRequest(w, "invalid_formula_parameters")
	case errors.Is(err, costing.ErrMarginOutOfRange):
		writeBadRequest(w, "margin_out_of_range")
	case errors.Is(err, service.ErrInvalidDiscount):
		writeBadRequest(w, "invalid_discount")
	default:
		slog.Error(logMsg, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal_error"})
	}
}

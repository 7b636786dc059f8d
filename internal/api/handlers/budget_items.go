package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/eventra/eventra/internal/api/dto"
	"github.com/eventra/eventra/internal/auth"
	"github.com/eventra/eventra/internal/budget"
	"github.com/eventra/eventra/internal/database/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BudgetItemHandler struct {
	authService   *auth.Service
	budgetService *budget.Service
}

func NewBudgetItemHandler(authService *auth.Service, budgetService *budget.Service) *BudgetItemHandler {
	return &BudgetItemHandler{authService: authService, budgetService: budgetService}
}

type BudgetItemRequest struct {
	Category      string           `json:"category"`
	Name          string           `json:"name"`
	EstimatedCost decimal.Decimal  `json:"estimated_cost"`
	ActualCost    *decimal.Decimal `json:"actual_cost"`
	Status        string           `json:"status"`
}

func (r BudgetItemRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.Status != "" && !models.BudgetItemStatus(r.Status).Valid() {
		errors["status"] = "Invalid status"
	}
	return errors
}

// Create handles POST /api/v1/events/{eventID}/budget-items
func (h *BudgetItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.authService)
	if !ok {
		return
	}

	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid event ID"})
		return
	}

	var req BudgetItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	item, err := h.budgetService.CreateItem(r.Context(), actor, eventID, budget.ItemInput{
		Category:      req.Category,
		Name:          req.Name,
		EstimatedCost: req.EstimatedCost,
		ActualCost:    req.ActualCost,
		Status:        models.BudgetItemStatus(req.Status),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// List handles GET /api/v1/events/{eventID}/budget-items
func (h *BudgetItemHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.authService)
	if !ok {
		return
	}

	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid event ID"})
		return
	}

	items, err := h.budgetService.ListItems(r.Context(), actor, eventID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pageOf(items, parsePagination(r)))
}

// Update handles PUT /api/v1/budget-items/{id}
func (h *BudgetItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.authService)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid budget item ID"})
		return
	}

	var req BudgetItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	item, err := h.budgetService.UpdateItem(r.Context(), actor, itemID, budget.ItemInput{
		Category:      req.Category,
		Name:          req.Name,
		EstimatedCost: req.EstimatedCost,
		ActualCost:    req.ActualCost,
		Status:        models.BudgetItemStatus(req.Status),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/v1/budget-items/{id}
func (h *BudgetItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.authService)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid budget item ID"})
		return
	}

	if err := h.budgetService.DeleteItem(r.Context(), actor, itemID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Budget item deleted"})
}

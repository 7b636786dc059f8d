package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/eventra/eventra/internal/api/dto"
	"github.com/eventra/eventra/internal/api/middleware"
	"github.com/eventra/eventra/internal/auth"
	"github.com/eventra/eventra/internal/budget"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ExpenseHandler struct {
	authService   *auth.Service
	budgetService *budget.Service
}

func NewExpenseHandler(authService *auth.Service, budgetService *budget.Service) *ExpenseHandler {
	return &ExpenseHandler{authService: authService, budgetService: budgetService}
}

type ExpenseRequest struct {
	BudgetItemID  *string         `json:"budget_item_id"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	ExpenseDate   string          `json:"expense_date"`
	Description   string          `json:"description"`
}

func (r ExpenseRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.ExpenseDate != "" {
		if _, err := time.Parse(dateLayout, r.ExpenseDate); err != nil {
			errors["expense_date"] = "Expense date must be YYYY-MM-DD"
		}
	}
	if r.BudgetItemID != nil && *r.BudgetItemID != "" {
		if _, err := uuid.Parse(*r.BudgetItemID); err != nil {
			errors["budget_item_id"] = "Invalid budget item ID format"
		}
	}
	return errors
}

func (r ExpenseRequest) toInput(approvedBy uuid.UUID) budget.ExpenseInput {
	input := budget.ExpenseInput{
		Name:          r.Name,
		Amount:        r.Amount,
		PaymentMethod: r.PaymentMethod,
		Description:   r.Description,
	}
	if r.BudgetItemID != nil && *r.BudgetItemID != "" {
		id, _ := uuid.Parse(*r.BudgetItemID)
		input.BudgetItemID = &id
	}
	if r.ExpenseDate != "" {
		d, _ := time.Parse(dateLayout, r.ExpenseDate)
		input.ExpenseDate = &d
	}
	if approvedBy != uuid.Nil {
		input.ApprovedByID = &approvedBy
	}
	return input
}

// Create handles POST /api/v1/events/{eventID}/expenses
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.authService)
	if !ok {
		return
	}

	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid event ID"})
		return
	}

	var req ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	expense, err := h.budgetService.CreateExpense(r.Context(), actor, eventID, req.toInput(middleware.GetUserID(r.Context())))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, expense)
}

// List handles GET /api/v1/events/{eventID}/expenses
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.authService)
	if !ok {
		return
	}

	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid event ID"})
		return
	}

	expenses, err := h.budgetService.ListExpenses(r.Context(), actor, eventID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pageOf(expenses, parsePagination(r)))
}

// Update handles PUT /api/v1/expenses/{id}
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.authService)
	if !ok {
		return
	}

	expenseID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid expense ID"})
		return
	}

	var req ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	expense, err := h.budgetService.UpdateExpense(r.Context(), actor, expenseID, req.toInput(middleware.GetUserID(r.Context())))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, expense)
}

// Delete handles DELETE /api/v1/expenses/{id}
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.authService)
	if !ok {
		return
	}

	expenseID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid expense ID"})
		return
	}

	if err := h.budgetService.DeleteExpense(r.Context(), actor, expenseID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Expense deleted"})
}

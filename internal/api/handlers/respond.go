package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eventra/eventra/internal/access"
	"github.com/eventra/eventra/internal/api/dto"
	"github.com/eventra/eventra/internal/api/middleware"
	"github.com/eventra/eventra/internal/auth"
	"github.com/eventra/eventra/internal/budget"
	"github.com/eventra/eventra/internal/database/models"
	"github.com/eventra/eventra/internal/events"
	"github.com/eventra/eventra/internal/team"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps the domain error taxonomy onto HTTP statuses.
// Budget rejections carry their figures so clients can explain them.
func writeServiceError(w http.ResponseWriter, err error) {
	var exceeded *budget.ExceededError
	if errors.As(err, &exceeded) {
		writeJSON(w, http.StatusUnprocessableEntity, dto.BudgetExceededResponse{
			Error:     "Budget exceeded",
			Ceiling:   exceeded.Ceiling.String(),
			Current:   exceeded.Current.String(),
			Attempted: exceeded.Attempted.String(),
			Remaining: exceeded.Remaining.String(),
		})
		return
	}

	var transition *events.InvalidTransitionError
	if errors.As(err, &transition) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: transition.Error()})
		return
	}

	switch {
	case errors.Is(err, access.ErrNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Not found"})
	case errors.Is(err, access.ErrForbidden):
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Forbidden"})
	case errors.Is(err, budget.ErrHasLinkedExpenses):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Budget item has linked expenses"})
	case errors.Is(err, team.ErrTeamNotEmpty):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Offload your team before deleting your account"})
	case errors.Is(err, team.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Email already in use"})
	case errors.Is(err, budget.ErrNegativeAmount),
		errors.Is(err, events.ErrNegativeBudget),
		errors.Is(err, events.ErrNotTeamLead),
		errors.Is(err, events.ErrAssigneeNotFound),
		errors.Is(err, team.ErrInvalidRole):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal error"})
	}
}

// requireActor loads the acting user from the database so permission checks
// run against current role and membership, not stale token claims.
func requireActor(w http.ResponseWriter, r *http.Request, authService *auth.Service) (*models.User, bool) {
	actor, err := authService.GetUserByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return nil, false
	}
	if !actor.IsActive {
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Account is inactive"})
		return nil, false
	}
	return actor, true
}

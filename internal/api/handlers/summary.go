package handlers

import (
	"net/http"

	"github.com/eventra/eventra/internal/api/dto"
	"github.com/eventra/eventra/internal/auth"
	"github.com/eventra/eventra/internal/summary"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type SummaryHandler struct {
	authService    *auth.Service
	summaryService *summary.Service
}

func NewSummaryHandler(authService *auth.Service, summaryService *summary.Service) *SummaryHandler {
	return &SummaryHandler{authService: authService, summaryService: summaryService}
}

// Get handles GET /api/v1/events/{eventID}/summary
func (h *SummaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.authService)
	if !ok {
		return
	}

	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid event ID"})
		return
	}

	s, err := h.summaryService.EventSummary(r.Context(), actor, eventID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s)
}

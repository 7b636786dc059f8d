package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/eventra/eventra/internal/api/dto"
	"github.com/eventra/eventra/internal/auth"
	"github.com/eventra/eventra/internal/database/models"
	"github.com/eventra/eventra/internal/events"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type EventHandler struct {
	authService  *auth.Service
	eventService *events.Service
}

func NewEventHandler(authService *auth.Service, eventService *events.Service) *EventHandler {
	return &EventHandler{authService: authService, eventService: eventService}
}

// EventRequest covers both create and update; status and team lead are
// ignored on create.
type EventRequest struct {
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	Location           string           `json:"location"`
	EventDate          string           `json:"event_date"`
	ExpectedBudget     decimal.Decimal  `json:"expected_budget"`
	ActualBudget       *decimal.Decimal `json:"actual_budget"`
	ExpectedAttendance int              `json:"expected_attendance"`
	ExpectedRevenue    *decimal.Decimal `json:"expected_revenue"`
	Status             string           `json:"status"`
	TeamLeadID         *string          `json:"team_lead_id"`
}

func (r EventRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.EventDate == "" {
		errors["event_date"] = "Event date is required"
	} else if _, err := time.Parse(dateLayout, r.EventDate); err != nil {
		errors["event_date"] = "Event date must be YYYY-MM-DD"
	}
	if r.Status != "" && !models.EventStatus(r.Status).Valid() {
		errors["status"] = "Invalid status"
	}
	if r.TeamLeadID != nil && *r.TeamLeadID != "" {
		if _, err := uuid.Parse(*r.TeamLeadID); err != nil {
			errors["team_lead_id"] = "Invalid team lead ID format"
		}
	}
	return errors
}

func (r EventRequest) teamLeadID() *uuid.UUID {
	if r.TeamLeadID == nil || *r.TeamLeadID == "" {
		return nil
	}
	id, _ := uuid.Parse(*r.TeamLeadID)
	return &id
}

// Create handles POST /api/v1/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.authService)
	if !ok {
		return
	}

	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	date, _ := time.Parse(dateLayout, req.EventDate)
	event, err := h.eventService.Create(r.Context(), actor, events.CreateInput{
		Name:               req.Name,
		Description:        req.Description,
		Location:           req.Location,
		EventDate:          date,
		ExpectedBudget:     req.ExpectedBudget,
		ActualBudget:       req.ActualBudget,
		ExpectedAttendance: req.ExpectedAttendance,
		ExpectedRevenue:    req.ExpectedRevenue,
		TeamLeadID:         req.teamLeadID(),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// List handles GET /api/v1/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.authService)
	if !ok {
		return
	}

	list, err := h.eventService.List(r.Context(), actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pageOf(list, parsePagination(r)))
}

// Get handles GET /api/v1/events/{id}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.authService)
	if !ok {
		return
	}

	eventID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid event ID"})
		return
	}

	event, err := h.eventService.Get(r.Context(), actor, eventID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// Update handles PUT /api/v1/events/{id}
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.authService)
	if !ok {
		return
	}

	eventID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid event ID"})
		return
	}

	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	date, _ := time.Parse(dateLayout, req.EventDate)
	event, err := h.eventService.Update(r.Context(), actor, eventID, events.UpdateInput{
		Name:               req.Name,
		Description:        req.Description,
		Location:           req.Location,
		EventDate:          date,
		ExpectedBudget:     req.ExpectedBudget,
		ActualBudget:       req.ActualBudget,
		ExpectedAttendance: req.ExpectedAttendance,
		ExpectedRevenue:    req.ExpectedRevenue,
		Status:             models.EventStatus(req.Status),
		TeamLeadID:         req.teamLeadID(),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

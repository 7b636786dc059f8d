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
)

type ChecklistHandler struct {
	authService  *auth.Service
	eventService *events.Service
}

func NewChecklistHandler(authService *auth.Service, eventService *events.Service) *ChecklistHandler {
	return &ChecklistHandler{authService: authService, eventService: eventService}
}

type ChecklistRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	AssignedTo  *string `json:"assigned_to"`
	DueDate     string  `json:"due_date"`
	Status      string  `json:"status"`
}

func (r ChecklistRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Title == "" {
		errors["title"] = "Title is required"
	}
	if r.Status != "" && !models.ChecklistStatus(r.Status).Valid() {
		errors["status"] = "Invalid status"
	}
	if r.DueDate != "" {
		if _, err := time.Parse(dateLayout, r.DueDate); err != nil {
			errors["due_date"] = "Due date must be YYYY-MM-DD"
		}
	}
	if r.AssignedTo != nil && *r.AssignedTo != "" {
		if _, err := uuid.Parse(*r.AssignedTo); err != nil {
			errors["assigned_to"] = "Invalid assignee ID format"
		}
	}
	return errors
}

func (r ChecklistRequest) toInput() events.ChecklistInput {
	input := events.ChecklistInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      models.ChecklistStatus(r.Status),
	}
	if r.AssignedTo != nil && *r.AssignedTo != "" {
		id, _ := uuid.Parse(*r.AssignedTo)
		input.AssignedTo = &id
	}
	if r.DueDate != "" {
		d, _ := time.Parse(dateLayout, r.DueDate)
		input.DueDate = &d
	}
	return input
}

// Create handles POST /api/v1/events/{eventID}/checklist
func (h *ChecklistHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.authService)
	if !ok {
		return
	}

	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid event ID"})
		return
	}

	var req ChecklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	item, err := h.eventService.CreateChecklistItem(r.Context(), actor, eventID, req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// List handles GET /api/v1/events/{eventID}/checklist
func (h *ChecklistHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.authService)
	if !ok {
		return
	}

	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid event ID"})
		return
	}

	items, err := h.eventService.ListChecklist(r.Context(), actor, eventID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pageOf(items, parsePagination(r)))
}

// Update handles PUT /api/v1/checklist/{id}
func (h *ChecklistHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.authService)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid checklist item ID"})
		return
	}

	var req ChecklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	item, err := h.eventService.UpdateChecklistItem(r.Context(), actor, itemID, req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/v1/checklist/{id}
func (h *ChecklistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.authService)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid checklist item ID"})
		return
	}

	if err := h.eventService.DeleteChecklistItem(r.Context(), actor, itemID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Checklist item deleted"})
}

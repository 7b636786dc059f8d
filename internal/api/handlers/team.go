package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/eventra/eventra/internal/api/dto"
	"github.com/eventra/eventra/internal/auth"
	"github.com/eventra/eventra/internal/database/models"
	"github.com/eventra/eventra/internal/team"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type TeamHandler struct {
	authService *auth.Service
	teamService *team.Service
}

func NewTeamHandler(authService *auth.Service, teamService *team.Service) *TeamHandler {
	return &TeamHandler{authService: authService, teamService: teamService}
}

type CreateTeamUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r CreateTeamUserRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < 8 {
		errors["password"] = "Password must be at least 8 characters"
	}
	if r.Role == "" {
		errors["role"] = "Role is required"
	}
	return errors
}

// Create handles POST /api/v1/team
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.authService)
	if !ok {
		return
	}

	var req CreateTeamUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	user, err := h.teamService.CreateUser(r.Context(), actor, team.CreateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     models.Role(req.Role),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, userToDTO(user))
}

// List handles GET /api/v1/team
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.authService)
	if !ok {
		return
	}

	users, err := h.teamService.List(r.Context(), actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]dto.UserDTO, len(users))
	for i := range users {
		out[i] = userToDTO(&users[i])
	}
	writeJSON(w, http.StatusOK, pageOf(out, parsePagination(r)))
}

// DeleteMember handles DELETE /api/v1/team/{id}
func (h *TeamHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.authService)
	if !ok {
		return
	}

	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user ID"})
		return
	}

	if err := h.teamService.DeleteMember(r.Context(), actor, targetID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Team member deleted"})
}

// DeleteOwnAccount handles DELETE /api/v1/account
func (h *TeamHandler) DeleteOwnAccount(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.authService)
	if !ok {
		return
	}

	if err := h.teamService.DeleteOwnAccount(r.Context(), actor); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Account deleted"})
}

// DeleteOrganization handles DELETE /api/v1/account/organization
func (h *TeamHandler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.authService)
	if !ok {
		return
	}

	if err := h.teamService.DeleteOrganization(r.Context(), actor); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Organization deleted"})
}

// Package events owns the event lifecycle: creation, updates with a status
// transition guard, role-based visibility, and the checklist items that drive
// team-member visibility.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventra/eventra/internal/access"
	"github.com/eventra/eventra/internal/database/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrNotTeamLead is returned when the assigned team lead does not hold
	// the Team Lead role or is outside the organization.
	ErrNotTeamLead = errors.New("assigned user must have Team Lead role")

	ErrNegativeBudget = errors.New("expected budget must not be negative")
)

// InvalidTransitionError rejects a status change outside
// {Pending -> In Progress -> Completed, any -> Cancelled}.
type InvalidTransitionError struct {
	From, To models.EventStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move event from %q to %q", e.From, e.To)
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type CreateInput struct {
	Name               string
	Description        string
	Location           string
	EventDate          time.Time
	ExpectedBudget     decimal.Decimal
	ActualBudget       *decimal.Decimal
	ExpectedAttendance int
	ExpectedRevenue    *decimal.Decimal
	TeamLeadID         *uuid.UUID
}

type UpdateInput struct {
	Name               string
	Description        string
	Location           string
	EventDate          time.Time
	ExpectedBudget     decimal.Decimal
	ActualBudget       *decimal.Decimal
	ExpectedAttendance int
	ExpectedRevenue    *decimal.Decimal
	Status             models.EventStatus
	TeamLeadID         *uuid.UUID
}

// Create makes a new event in the actor's organization. Account managers
// only; organization and creator are fixed here and never change afterwards.
func (s *Service) Create(ctx context.Context, actor *models.User, input CreateInput) (*models.Event, error) {
	if err := access.CreateEvent(actor); err != nil {
		return nil, err
	}
	if input.ExpectedBudget.IsNegative() {
		return nil, ErrNegativeBudget
	}
	if err := s.validateTeamLead(ctx, actor, input.TeamLeadID); err != nil {
		return nil, err
	}

	event := &models.Event{
		Name:               input.Name,
		Description:        input.Description,
		Location:           input.Location,
		EventDate:          input.EventDate,
		ExpectedBudget:     input.ExpectedBudget,
		ActualBudget:       input.ActualBudget,
		ExpectedAttendance: input.ExpectedAttendance,
		ExpectedRevenue:    input.ExpectedRevenue,
		Status:             models.EventStatusPending,
		Organization:       actor.Organization,
		CreatedByID:        actor.ID,
		TeamLeadID:         input.TeamLeadID,
	}
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// Update applies changes to an event the actor may edit. Status changes are
// validated against the transition table; organization and creator are
// immutable by construction (never copied from input).
func (s *Service) Update(ctx context.Context, actor *models.User, eventID uuid.UUID, input UpdateInput) (*models.Event, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrNotFound
		}
		return nil, err
	}

	if err := access.UpdateEvent(actor, &event); err != nil {
		return nil, err
	}
	if input.ExpectedBudget.IsNegative() {
		return nil, ErrNegativeBudget
	}
	if input.Status != "" && input.Status != event.Status {
		if err := checkTransition(event.Status, input.Status); err != nil {
			return nil, err
		}
		event.Status = input.Status
	}
	if err := s.validateTeamLead(ctx, actor, input.TeamLeadID); err != nil {
		return nil, err
	}

	event.Name = input.Name
	event.Description = input.Description
	event.Location = input.Location
	event.EventDate = input.EventDate
	event.ExpectedBudget = input.ExpectedBudget
	event.ActualBudget = input.ActualBudget
	event.ExpectedAttendance = input.ExpectedAttendance
	event.ExpectedRevenue = input.ExpectedRevenue
	event.TeamLeadID = input.TeamLeadID

	if err := s.db.WithContext(ctx).Save(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// List resolves visibility by role: account managers see their whole
// organization, team leads the events they lead, team members the events
// where they hold a checklist assignment. Anything else sees nothing.
func (s *Service) List(ctx context.Context, actor *models.User) ([]models.Event, error) {
	q := s.db.WithContext(ctx).Model(&models.Event{}).Order("created_at DESC")

	switch {
	case actor.IsAccountManager():
		q = q.Where("organization = ?", actor.Organization)
	case actor.IsTeamLead():
		q = q.Where("team_lead_id = ?", actor.ID)
	case actor.IsTeamMember():
		q = q.Distinct("events.*").
			Joins("JOIN event_checklists ON event_checklists.event_id = events.id").
			Where("event_checklists.assigned_to = ? AND event_checklists.deleted_at IS NULL", actor.ID)
	default:
		return []models.Event{}, nil
	}

	var out []models.Event
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a single event under the view rule.
func (s *Service) Get(ctx context.Context, actor *models.User, eventID uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrNotFound
		}
		return nil, err
	}

	assigned, err := s.HasAssignment(ctx, actor.ID, event.ID)
	if err != nil {
		return nil, err
	}
	if err := access.ViewEvent(actor, &event, assigned); err != nil {
		return nil, err
	}
	return &event, nil
}

// HasAssignment reports whether the user holds a checklist assignment on the
// event. It feeds both the view rule and team-member scoping.
func (s *Service) HasAssignment(ctx context.Context, userID, eventID uuid.UUID) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.ChecklistItem{}).
		Where("event_id = ? AND assigned_to = ?", eventID, userID).
		Count(&n).Error
	return n > 0, err
}

func checkTransition(from, to models.EventStatus) error {
	if to == models.EventStatusCancelled {
		return nil
	}
	ok := (from == models.EventStatusPending && to == models.EventStatusInProgress) ||
		(from == models.EventStatusInProgress && to == models.EventStatusCompleted)
	if !ok {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}

// validateTeamLead checks that the prospective lead exists in the actor's
// organization and carries the Team Lead role.
func (s *Service) validateTeamLead(ctx context.Context, actor *models.User, leadID *uuid.UUID) error {
	if leadID == nil {
		return nil
	}
	var lead models.User
	err := s.db.WithContext(ctx).
		Where("id = ? AND organization = ?", *leadID, actor.Organization).
		First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotTeamLead
	}
	if err != nil {
		return err
	}
	if !lead.IsTeamLead() {
		return ErrNotTeamLead
	}
	return nil
}

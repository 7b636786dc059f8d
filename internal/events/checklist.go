package events

import (
	"context"
	"errors"
	"time"

	"github.com/eventra/eventra/internal/access"
	"github.com/eventra/eventra/internal/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrAssigneeNotFound is returned when a checklist assignment names a user
// outside the actor's organization.
var ErrAssigneeNotFound = errors.New("assignee not found in organization")

type ChecklistInput struct {
	Title       string
	Description string
	AssignedTo  *uuid.UUID
	DueDate     *time.Time
	Status      models.ChecklistStatus
}

func (s *Service) CreateChecklistItem(ctx context.Context, actor *models.User, eventID uuid.UUID, input ChecklistInput) (*models.ChecklistItem, error) {
	event, err := s.requireOrgEvent(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	if err := access.TouchEventResource(actor, event); err != nil {
		return nil, err
	}
	if err := s.validateAssignee(ctx, actor, input.AssignedTo); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.ChecklistPending
	}
	item := &models.ChecklistItem{
		EventID:     event.ID,
		Title:       input.Title,
		Description: input.Description,
		AssignedTo:  input.AssignedTo,
		DueDate:     input.DueDate,
		Status:      status,
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) ListChecklist(ctx context.Context, actor *models.User, eventID uuid.UUID) ([]models.ChecklistItem, error) {
	if _, err := s.requireOrgEvent(ctx, actor, eventID); err != nil {
		return nil, err
	}
	var items []models.ChecklistItem
	err := s.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (s *Service) UpdateChecklistItem(ctx context.Context, actor *models.User, itemID uuid.UUID, input ChecklistInput) (*models.ChecklistItem, error) {
	var item models.ChecklistItem
	if err := s.db.WithContext(ctx).First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrNotFound
		}
		return nil, err
	}
	if _, err := s.requireOrgEvent(ctx, actor, item.EventID); err != nil {
		return nil, err
	}
	if err := s.validateAssignee(ctx, actor, input.AssignedTo); err != nil {
		return nil, err
	}

	item.Title = input.Title
	item.Description = input.Description
	item.AssignedTo = input.AssignedTo
	item.DueDate = input.DueDate
	if input.Status != "" {
		item.Status = input.Status
	}
	if err := s.db.WithContext(ctx).Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Service) DeleteChecklistItem(ctx context.Context, actor *models.User, itemID uuid.UUID) error {
	var item models.ChecklistItem
	if err := s.db.WithContext(ctx).First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.ErrNotFound
		}
		return err
	}
	if _, err := s.requireOrgEvent(ctx, actor, item.EventID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&item).Error
}

// requireOrgEvent loads the event and hides it when it sits outside the
// actor's organization.
func (s *Service) requireOrgEvent(ctx context.Context, actor *models.User, eventID uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := s.db.WithContext(ctx).
		Where("id = ? AND organization = ?", eventID, actor.Organization).
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, access.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *Service) validateAssignee(ctx context.Context, actor *models.User, assignee *uuid.UUID) error {
	if assignee == nil {
		return nil
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND organization = ?", *assignee, actor.Organization).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAssigneeNotFound
	}
	return nil
}

// Package team manages organization membership: provisioning subordinate
// users, listing the team, and the three delete paths (member by id, own
// account, whole organization).
package team

import (
	"context"
	"errors"

	"github.com/eventra/eventra/internal/access"
	"github.com/eventra/eventra/internal/auth"
	"github.com/eventra/eventra/internal/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrInvalidRole rejects team-user creation with anything but the two
	// subordinate roles.
	ErrInvalidRole = errors.New("role must be Team Lead or Team Member")

	ErrEmailTaken = errors.New("email already in use")

	// ErrTeamNotEmpty blocks self-deletion by an account manager who still
	// has team members.
	ErrTeamNotEmpty = errors.New("organization still has team members")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Role     models.Role
}

// CreateUser provisions a team lead or team member inside the actor's
// organization. Account managers only; the new user's role is restricted to
// the two subordinate roles, so managers cannot mint peer managers here.
func (s *Service) CreateUser(ctx context.Context, actor *models.User, input CreateUserInput) (*models.User, error) {
	if err := access.CreateTeamUser(actor); err != nil {
		return nil, err
	}
	if input.Role != models.RoleTeamLead && input.Role != models.RoleTeamMember {
		return nil, ErrInvalidRole
	}

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        input.Email,
		PasswordHash: hash,
		Name:         input.Name,
		Organization: actor.Organization,
		Role:         input.Role,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// List returns the actor's organization members, excluding the actor.
func (s *Service) List(ctx context.Context, actor *models.User) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("organization = ? AND id <> ?", actor.Organization, actor.ID).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

// DeleteMember removes a team member by id. Managers only; targets outside
// the organization read as not found, and peer managers are protected.
func (s *Service) DeleteMember(ctx context.Context, actor *models.User, targetID uuid.UUID) error {
	var target models.User
	if err := s.db.WithContext(ctx).First(&target, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.ErrNotFound
		}
		return err
	}
	if err := access.DeleteTeamMember(actor, &target); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&target).Error
}

// DeleteOwnAccount removes the actor. An account manager with remaining
// team members is rejected; they must offload the team first or take the
// explicit organization-delete path.
func (s *Service) DeleteOwnAccount(ctx context.Context, actor *models.User) error {
	var remaining int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("organization = ? AND id <> ?", actor.Organization, actor.ID).
		Count(&remaining).Error; err != nil {
		return err
	}
	if err := access.DeleteOwnAccount(actor, remaining); err != nil {
		if errors.Is(err, access.ErrForbidden) {
			return ErrTeamNotEmpty
		}
		return err
	}
	return s.db.WithContext(ctx).Delete(actor).Error
}

// DeleteOrganization is the explicit, irreversible cascade: the manager and
// every member of the organization are removed in one transaction, together
// with the organization's events and their ledger rows.
func (s *Service) DeleteOrganization(ctx context.Context, actor *models.User) error {
	if err := access.DeleteOrganization(actor); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var eventIDs []uuid.UUID
		if err := tx.Model(&models.Event{}).
			Where("organization = ?", actor.Organization).
			Pluck("id", &eventIDs).Error; err != nil {
			return err
		}

		if len(eventIDs) > 0 {
			if err := tx.Where("event_id IN ?", eventIDs).Delete(&models.Expense{}).Error; err != nil {
				return err
			}
			if err := tx.Where("event_id IN ?", eventIDs).Delete(&models.BudgetItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("event_id IN ?", eventIDs).Delete(&models.ChecklistItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("organization = ?", actor.Organization).Delete(&models.Event{}).Error; err != nil {
				return err
			}
		}

		return tx.Where("organization = ?", actor.Organization).Delete(&models.User{}).Error
	})
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type ChecklistStatus string

const (
	ChecklistPending    ChecklistStatus = "pending"
	ChecklistInProgress ChecklistStatus = "in_progress"
	ChecklistCompleted  ChecklistStatus = "completed"
)

func (s ChecklistStatus) Valid() bool {
	switch s {
	case ChecklistPending, ChecklistInProgress, ChecklistCompleted:
		return true
	}
	return false
}

// ChecklistItem is a task on an event. An assignment is also what makes the
// event visible to a team member.
type ChecklistItem struct {
	Base
	EventID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"event_id"`
	Title       string          `gorm:"not null" json:"title"`
	Description string          `json:"description,omitempty"`
	AssignedTo  *uuid.UUID      `gorm:"type:uuid;index" json:"assigned_to,omitempty"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Status      ChecklistStatus `gorm:"default:'pending'" json:"status"`

	Event    *Event `gorm:"foreignKey:EventID" json:"-"`
	Assignee *User  `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
}

func (ChecklistItem) TableName() string {
	return "event_checklists"
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventStatus string

const (
	EventStatusPending    EventStatus = "Pending"
	EventStatusInProgress EventStatus = "In Progress"
	EventStatusCompleted  EventStatus = "Completed"
	EventStatusCancelled  EventStatus = "Cancelled"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusPending, EventStatusInProgress, EventStatusCompleted, EventStatusCancelled:
		return true
	}
	return false
}

type Event struct {
	Base
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location"`
	EventDate   time.Time `json:"event_date"`

	// ExpectedBudget is the approved ceiling: neither planned allocations nor
	// recorded expenses may ever sum past it.
	ExpectedBudget     decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"expected_budget"`
	ActualBudget       *decimal.Decimal `gorm:"type:numeric(12,2)" json:"actual_budget,omitempty"`
	ExpectedAttendance int              `gorm:"default:0" json:"expected_attendance"`
	ExpectedRevenue    *decimal.Decimal `gorm:"type:numeric(12,2)" json:"expected_revenue,omitempty"`

	Status EventStatus `gorm:"default:'Pending'" json:"status"`

	// Organization and CreatedByID are fixed at creation.
	Organization string     `gorm:"index;not null" json:"organization"`
	CreatedByID  uuid.UUID  `gorm:"type:uuid;not null" json:"created_by_id"`
	TeamLeadID   *uuid.UUID `gorm:"type:uuid;index" json:"team_lead_id,omitempty"`

	CreatedBy *User `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	TeamLead  *User `gorm:"foreignKey:TeamLeadID" json:"team_lead,omitempty"`
}

func (Event) TableName() string {
	return "events"
}

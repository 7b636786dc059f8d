package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BudgetItemStatus string

const (
	BudgetItemNotPaid     BudgetItemStatus = "not_paid"
	BudgetItemDepositPaid BudgetItemStatus = "deposit_paid"
	BudgetItemPaid        BudgetItemStatus = "paid"
)

func (s BudgetItemStatus) Valid() bool {
	switch s {
	case BudgetItemNotPaid, BudgetItemDepositPaid, BudgetItemPaid:
		return true
	}
	return false
}

// BudgetItem is a planned allocation against its event's expected budget.
type BudgetItem struct {
	Base
	EventID       uuid.UUID        `gorm:"type:uuid;index;not null" json:"event_id"`
	Category      string           `json:"category"`
	Name          string           `gorm:"not null" json:"name"`
	EstimatedCost decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"estimated_cost"`
	ActualCost    *decimal.Decimal `gorm:"type:numeric(12,2)" json:"actual_cost,omitempty"`
	Status        BudgetItemStatus `gorm:"default:'not_paid'" json:"status"`

	Event *Event `gorm:"foreignKey:EventID" json:"-"`
}

func (BudgetItem) TableName() string {
	return "budget_items"
}

// Expense is actual recorded spend against an event's expected budget. The
// budget-item link is optional: misc expenses attach to the event directly.
type Expense struct {
	Base
	EventID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"event_id"`
	BudgetItemID *uuid.UUID `gorm:"type:uuid;index" json:"budget_item_id,omitempty"`

	Name          string          `gorm:"not null" json:"name"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	ExpenseDate   time.Time       `json:"expense_date"`
	Description   string          `json:"description,omitempty"`
	ApprovedByID  *uuid.UUID      `gorm:"type:uuid" json:"approved_by_id,omitempty"`

	Event      *Event      `gorm:"foreignKey:EventID" json:"-"`
	BudgetItem *BudgetItem `gorm:"foreignKey:BudgetItemID" json:"-"`
	ApprovedBy *User       `gorm:"foreignKey:ApprovedByID" json:"approved_by,omitempty"`
}

func (Expense) TableName() string {
	return "expenses"
}

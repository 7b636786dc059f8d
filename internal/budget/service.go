// Package budget is the ledger: it owns the arithmetic between an event's
// approved budget, its planned items and its recorded expenses, and rejects
// any mutation that would push a total past the ceiling. Checks and writes
// run in one transaction with the event row locked, so two concurrent
// mutations cannot both pass against a stale total.
package budget

import (
	"context"
	"errors"
	"time"

	"github.com/eventra/eventra/internal/access"
	"github.com/eventra/eventra/internal/database/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type ItemInput struct {
	Category      string
	Name          string
	EstimatedCost decimal.Decimal
	ActualCost    *decimal.Decimal
	Status        models.BudgetItemStatus
}

type ExpenseInput struct {
	BudgetItemID  *uuid.UUID
	Name          string
	Amount        decimal.Decimal
	PaymentMethod string
	ExpenseDate   *time.Time
	Description   string
	ApprovedByID  *uuid.UUID
}

// lockEvent loads the event inside tx with a row lock so the aggregate check
// and the write that follows are serialized per event. Events outside the
// actor's organization read as not found.
func lockEvent(tx *gorm.DB, actor *models.User, eventID uuid.UUID) (*models.Event, error) {
	q := tx.Where("id = ? AND organization = ?", eventID, actor.Organization)
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var event models.Event
	if err := q.First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

func allocatedTotal(tx *gorm.DB, eventID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.Model(&models.BudgetItem{}).
		Where("event_id = ?", eventID).
		Select("COALESCE(SUM(estimated_cost), 0)").
		Scan(&total).Error
	return total, err
}

func expenseTotal(tx *gorm.DB, eventID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.Model(&models.Expense{}).
		Where("event_id = ?", eventID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

func checkCeiling(ceiling, current, delta decimal.Decimal) error {
	projected := current.Add(delta)
	// Exact equality with the ceiling is allowed.
	if projected.GreaterThan(ceiling) {
		return &ExceededError{
			Ceiling:   ceiling,
			Current:   current,
			Attempted: delta,
			Remaining: ceiling.Sub(current),
		}
	}
	return nil
}

// CreateItem plans a new allocation. Fails if existing allocations plus the
// new estimate would exceed the event's expected budget.
func (s *Service) CreateItem(ctx context.Context, actor *models.User, eventID uuid.UUID, input ItemInput) (*models.BudgetItem, error) {
	if input.EstimatedCost.IsNegative() {
		return nil, ErrNegativeAmount
	}

	var item *models.BudgetItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := lockEvent(tx, actor, eventID)
		if err != nil {
			return err
		}
		current, err := allocatedTotal(tx, event.ID)
		if err != nil {
			return err
		}
		if err := checkCeiling(event.ExpectedBudget, current, input.EstimatedCost); err != nil {
			return err
		}

		status := input.Status
		if status == "" {
			status = models.BudgetItemNotPaid
		}
		item = &models.BudgetItem{
			EventID:       event.ID,
			Category:      input.Category,
			Name:          input.Name,
			EstimatedCost: input.EstimatedCost,
			ActualCost:    input.ActualCost,
			Status:        status,
		}
		return tx.Create(item).Error
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem re-checks the ceiling with the item's old estimate swapped for
// the new one.
func (s *Service) UpdateItem(ctx context.Context, actor *models.User, itemID uuid.UUID, input ItemInput) (*models.BudgetItem, error) {
	if input.EstimatedCost.IsNegative() {
		return nil, ErrNegativeAmount
	}

	var item models.BudgetItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return access.ErrNotFound
			}
			return err
		}

		event, err := lockEvent(tx, actor, item.EventID)
		if err != nil {
			return err
		}

		current, err := allocatedTotal(tx, event.ID)
		if err != nil {
			return err
		}
		delta := input.EstimatedCost.Sub(item.EstimatedCost)
		if err := checkCeiling(event.ExpectedBudget, current, delta); err != nil {
			return err
		}

		item.Category = input.Category
		item.Name = input.Name
		item.EstimatedCost = input.EstimatedCost
		item.ActualCost = input.ActualCost
		if input.Status != "" {
			item.Status = input.Status
		}
		return tx.Save(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes a planned allocation. Items with linked expenses are
// hard-blocked; expenses are never silently orphaned.
func (s *Service) DeleteItem(ctx context.Context, actor *models.User, itemID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.BudgetItem
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return access.ErrNotFound
			}
			return err
		}

		if _, err := lockEvent(tx, actor, item.EventID); err != nil {
			return err
		}

		var linked int64
		if err := tx.Model(&models.Expense{}).
			Where("budget_item_id = ?", item.ID).
			Count(&linked).Error; err != nil {
			return err
		}
		if linked > 0 {
			return ErrHasLinkedExpenses
		}

		return tx.Delete(&item).Error
	})
}

// ListItems returns an event's planned allocations.
func (s *Service) ListItems(ctx context.Context, actor *models.User, eventID uuid.UUID) ([]models.BudgetItem, error) {
	if err := s.requireEvent(ctx, actor, eventID); err != nil {
		return nil, err
	}
	var items []models.BudgetItem
	err := s.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// CreateExpense records actual spend. Fails if recorded expenses plus the new
// amount would exceed the event's expected budget; a linked budget item must
// belong to the same event. The date defaults to today.
func (s *Service) CreateExpense(ctx context.Context, actor *models.User, eventID uuid.UUID, input ExpenseInput) (*models.Expense, error) {
	if input.Amount.IsNegative() {
		return nil, ErrNegativeAmount
	}

	var expense *models.Expense
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := lockEvent(tx, actor, eventID)
		if err != nil {
			return err
		}
		if input.BudgetItemID != nil {
			var item models.BudgetItem
			if err := tx.First(&item, "id = ? AND event_id = ?", *input.BudgetItemID, event.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return access.ErrNotFound
				}
				return err
			}
		}

		current, err := expenseTotal(tx, event.ID)
		if err != nil {
			return err
		}
		if err := checkCeiling(event.ExpectedBudget, current, input.Amount); err != nil {
			return err
		}

		date := time.Now()
		if input.ExpenseDate != nil {
			date = *input.ExpenseDate
		}
		expense = &models.Expense{
			EventID:       event.ID,
			BudgetItemID:  input.BudgetItemID,
			Name:          input.Name,
			Amount:        input.Amount,
			PaymentMethod: input.PaymentMethod,
			ExpenseDate:   date,
			Description:   input.Description,
			ApprovedByID:  input.ApprovedByID,
		}
		return tx.Create(expense).Error
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// UpdateExpense re-checks the ceiling with the old amount swapped for the new.
func (s *Service) UpdateExpense(ctx context.Context, actor *models.User, expenseID uuid.UUID, input ExpenseInput) (*models.Expense, error) {
	if input.Amount.IsNegative() {
		return nil, ErrNegativeAmount
	}

	var expense models.Expense
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&expense, "id = ?", expenseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return access.ErrNotFound
			}
			return err
		}

		event, err := lockEvent(tx, actor, expense.EventID)
		if err != nil {
			return err
		}

		if input.BudgetItemID != nil {
			var item models.BudgetItem
			if err := tx.First(&item, "id = ? AND event_id = ?", *input.BudgetItemID, event.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return access.ErrNotFound
				}
				return err
			}
		}

		current, err := expenseTotal(tx, event.ID)
		if err != nil {
			return err
		}
		delta := input.Amount.Sub(expense.Amount)
		if err := checkCeiling(event.ExpectedBudget, current, delta); err != nil {
			return err
		}

		expense.BudgetItemID = input.BudgetItemID
		expense.Name = input.Name
		expense.Amount = input.Amount
		expense.PaymentMethod = input.PaymentMethod
		if input.ExpenseDate != nil {
			expense.ExpenseDate = *input.ExpenseDate
		}
		expense.Description = input.Description
		expense.ApprovedByID = input.ApprovedByID
		return tx.Save(&expense).Error
	})
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// DeleteExpense is unconditional; derived totals are recomputed on read.
func (s *Service) DeleteExpense(ctx context.Context, actor *models.User, expenseID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var expense models.Expense
		if err := tx.First(&expense, "id = ?", expenseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return access.ErrNotFound
			}
			return err
		}
		if _, err := lockEvent(tx, actor, expense.EventID); err != nil {
			return err
		}
		return tx.Delete(&expense).Error
	})
}

// ListExpenses returns an event's recorded spend, newest first.
func (s *Service) ListExpenses(ctx context.Context, actor *models.User, eventID uuid.UUID) ([]models.Expense, error) {
	if err := s.requireEvent(ctx, actor, eventID); err != nil {
		return nil, err
	}
	var expenses []models.Expense
	err := s.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&expenses).Error
	return expenses, err
}

func (s *Service) requireEvent(ctx context.Context, actor *models.User, eventID uuid.UUID) error {
	var event models.Event
	err := s.db.WithContext(ctx).
		Where("id = ? AND organization = ?", eventID, actor.Organization).
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return access.ErrNotFound
	}
	return err
}

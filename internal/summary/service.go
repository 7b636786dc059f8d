// Package summary builds read-only projections over the budget ledger:
// financial totals, category breakdowns, checklist progress and alerts.
// Nothing here mutates state; every figure is recomputed from current rows.
package summary

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/eventra/eventra/internal/access"
	"github.com/eventra/eventra/internal/database/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	AlertWarning  = "warning"
	AlertCritical = "critical"

	BudgetHealthy    = "healthy"
	BudgetWarning    = "warning"
	BudgetCritical   = "critical"
	BudgetOverBudget = "over_budget"
)

var hundred = decimal.NewFromInt(100)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type EventInfo struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Status    models.EventStatus `json:"status"`
	EventDate time.Time          `json:"event_date"`
	Location  string             `json:"location"`
}

type Financials struct {
	ExpectedBudget     decimal.Decimal `json:"expected_budget"`
	AllocatedTotal     decimal.Decimal `json:"budget_items_total"`
	ExpenseTotal       decimal.Decimal `json:"expenses_total"`
	Remaining          decimal.Decimal `json:"remaining_budget"`
	UtilizationPercent decimal.Decimal `json:"budget_utilization_percent"`
	BudgetStatus       string          `json:"budget_status"`
}

type CategoryBreakdown struct {
	Category  string          `json:"category"`
	Allocated decimal.Decimal `json:"allocated"`
	Actual    decimal.Decimal `json:"actual"`
}

type ChecklistProgress struct {
	Total           int64           `json:"total_items"`
	Completed       int64           `json:"completed_items"`
	ProgressPercent decimal.Decimal `json:"progress_percent"`
}

type Alert struct {
	Level   string `json:"level"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

type EventSummary struct {
	Event          EventInfo           `json:"event"`
	Financials     Financials          `json:"financials"`
	Categories     []CategoryBreakdown `json:"categories"`
	RecentExpenses []models.Expense    `json:"recent_expenses"`
	Checklist      ChecklistProgress   `json:"checklist"`
	Attendance     Attendance          `json:"attendance"`
	Alerts         []Alert             `json:"alerts"`
}

type Attendance struct {
	ExpectedAttendance int              `json:"expected_attendance"`
	ExpectedRevenue    *decimal.Decimal `json:"expected_revenue,omitempty"`
}

// EventSummary assembles the full projection for one event, gated by the
// view rule (manager in org, lead of event, or member with an assignment).
func (s *Service) EventSummary(ctx context.Context, actor *models.User, eventID uuid.UUID) (*EventSummary, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrNotFound
		}
		return nil, err
	}

	var assigned int64
	if err := s.db.WithContext(ctx).Model(&models.ChecklistItem{}).
		Where("event_id = ? AND assigned_to = ?", event.ID, actor.ID).
		Count(&assigned).Error; err != nil {
		return nil, err
	}
	if err := access.ViewEvent(actor, &event, assigned > 0); err != nil {
		return nil, err
	}

	items, expenses, err := s.ledgerRows(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	fin := computeFinancials(&event, items, expenses)
	alerts := computeAlerts(&event, fin, items, expenses)

	var checklistTotal, checklistDone int64
	if err := s.db.WithContext(ctx).Model(&models.ChecklistItem{}).
		Where("event_id = ?", event.ID).Count(&checklistTotal).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.ChecklistItem{}).
		Where("event_id = ? AND status = ?", event.ID, models.ChecklistCompleted).
		Count(&checklistDone).Error; err != nil {
		return nil, err
	}

	recent := expenses
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > 5 {
		recent = recent[:5]
	}

	return &EventSummary{
		Event: EventInfo{
			ID:        event.ID,
			Name:      event.Name,
			Status:    event.Status,
			EventDate: event.EventDate,
			Location:  event.Location,
		},
		Financials:     fin,
		Categories:     computeCategories(items, expenses),
		RecentExpenses: recent,
		Checklist: ChecklistProgress{
			Total:           checklistTotal,
			Completed:       checklistDone,
			ProgressPercent: percentOrZero(decimal.NewFromInt(checklistDone), decimal.NewFromInt(checklistTotal)),
		},
		Attendance: Attendance{
			ExpectedAttendance: event.ExpectedAttendance,
			ExpectedRevenue:    event.ExpectedRevenue,
		},
		Alerts: alerts,
	}, nil
}

// AlertsForEvent recomputes just the alert list. Used by the background
// alert scanner, which acts on behalf of the system rather than a user.
func (s *Service) AlertsForEvent(ctx context.Context, event *models.Event) ([]Alert, error) {
	items, expenses, err := s.ledgerRows(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	fin := computeFinancials(event, items, expenses)
	return computeAlerts(event, fin, items, expenses), nil
}

func (s *Service) ledgerRows(ctx context.Context, eventID uuid.UUID) ([]models.BudgetItem, []models.Expense, error) {
	var items []models.BudgetItem
	if err := s.db.WithContext(ctx).Where("event_id = ?", eventID).Find(&items).Error; err != nil {
		return nil, nil, err
	}
	var expenses []models.Expense
	if err := s.db.WithContext(ctx).Where("event_id = ?", eventID).Find(&expenses).Error; err != nil {
		return nil, nil, err
	}
	return items, expenses, nil
}

func computeFinancials(event *models.Event, items []models.BudgetItem, expenses []models.Expense) Financials {
	allocated := decimal.Zero
	for _, it := range items {
		allocated = allocated.Add(it.EstimatedCost)
	}
	spent := decimal.Zero
	for _, ex := range expenses {
		spent = spent.Add(ex.Amount)
	}

	utilization := percentOrZero(spent, event.ExpectedBudget)

	return Financials{
		ExpectedBudget:     event.ExpectedBudget,
		AllocatedTotal:     allocated,
		ExpenseTotal:       spent,
		Remaining:          event.ExpectedBudget.Sub(spent),
		UtilizationPercent: utilization,
		BudgetStatus:       budgetStatus(utilization),
	}
}

func budgetStatus(utilization decimal.Decimal) string {
	switch {
	case utilization.LessThan(decimal.NewFromInt(75)):
		return BudgetHealthy
	case utilization.LessThan(decimal.NewFromInt(90)):
		return BudgetWarning
	case utilization.LessThan(hundred):
		return BudgetCritical
	}
	return BudgetOverBudget
}

func computeAlerts(event *models.Event, fin Financials, items []models.BudgetItem, expenses []models.Expense) []Alert {
	alerts := []Alert{}

	if fin.ExpenseTotal.GreaterThan(event.ExpectedBudget) || fin.UtilizationPercent.GreaterThanOrEqual(hundred) {
		alerts = append(alerts, Alert{
			Level: AlertCritical,
			Type:  "over_budget",
			Message: fmt.Sprintf("%s is over budget: %s spent against a ceiling of %s",
				event.Name, fin.ExpenseTotal, event.ExpectedBudget),
		})
	} else if fin.UtilizationPercent.GreaterThanOrEqual(decimal.NewFromInt(90)) {
		alerts = append(alerts, Alert{
			Level: AlertWarning,
			Type:  "budget_utilization",
			Message: fmt.Sprintf("%s has used %s%% of its budget",
				event.Name, fin.UtilizationPercent),
		})
	}

	// One warning per item whose linked spend passed its estimate.
	actualByItem := make(map[uuid.UUID]decimal.Decimal)
	for _, ex := range expenses {
		if ex.BudgetItemID != nil {
			actualByItem[*ex.BudgetItemID] = actualByItem[*ex.BudgetItemID].Add(ex.Amount)
		}
	}
	for _, it := range items {
		if actual, ok := actualByItem[it.ID]; ok && actual.GreaterThan(it.EstimatedCost) {
			alerts = append(alerts, Alert{
				Level: AlertWarning,
				Type:  "item_overrun",
				Message: fmt.Sprintf("%q cost %s against an estimate of %s",
					it.Name, actual, it.EstimatedCost),
			})
		}
	}

	return alerts
}

func computeCategories(items []models.BudgetItem, expenses []models.Expense) []CategoryBreakdown {
	itemCategory := make(map[uuid.UUID]string, len(items))
	allocated := make(map[string]decimal.Decimal)
	actual := make(map[string]decimal.Decimal)

	for _, it := range items {
		cat := it.Category
		if cat == "" {
			cat = "uncategorized"
		}
		itemCategory[it.ID] = cat
		allocated[cat] = allocated[cat].Add(it.EstimatedCost)
	}
	for _, ex := range expenses {
		if ex.BudgetItemID == nil {
			continue
		}
		if cat, ok := itemCategory[*ex.BudgetItemID]; ok {
			actual[cat] = actual[cat].Add(ex.Amount)
		}
	}

	out := make([]CategoryBreakdown, 0, len(allocated))
	for cat, alloc := range allocated {
		out = append(out, CategoryBreakdown{
			Category:  cat,
			Allocated: alloc,
			Actual:    actual[cat],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// percentOrZero is numerator/denominator*100 rounded to 2 places, with zero
// as the answer when the denominator is zero.
func percentOrZero(numerator, denominator decimal.Decimal) decimal.Decimal {
	if denominator.IsZero() {
		return decimal.Zero
	}
	return numerator.Mul(hundred).DivRound(denominator, 2)
}

package budget_test

import (
	"errors"
	"testing"

	"github.com/eventra/eventra/internal/access"
	"github.com/eventra/eventra/internal/budget"
	"github.com/eventra/eventra/internal/database/models"
	"github.com/eventra/eventra/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestService_CreateItem(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := budget.NewService(db)
	ctx := testutil.TestContext(t)

	manager := testutil.CreateTestUser(t, db, "Acme Events", models.RoleAccountManager)
	event := testutil.CreateTestEvent(t, db, manager, "1000")

	t.Run("creates item within budget", func(t *testing.T) {
		item, err := svc.CreateItem(ctx, manager, event.ID, budget.ItemInput{
			Category:      "catering",
			Name:          "Lunch buffet",
			EstimatedCost: dec("600"),
		})
		require.NoError(t, err)
		assert.Equal(t, models.BudgetItemNotPaid, item.Status)
		assert.True(t, item.EstimatedCost.Equal(dec("600")))
	})

	t.Run("rejects item that would exceed the ceiling", func(t *testing.T) {
		_, err := svc.CreateItem(ctx, manager, event.ID, budget.ItemInput{
			Category:      "venue",
			Name:          "Ballroom hire",
			EstimatedCost: dec("500"),
		})
		require.Error(t, err)

		var exceeded *budget.ExceededError
		require.ErrorAs(t, err, &exceeded)
		assert.True(t, exceeded.Ceiling.Equal(dec("1000")))
		assert.True(t, exceeded.Current.Equal(dec("600")))
		assert.True(t, exceeded.Attempted.Equal(dec("500")))
		assert.True(t, exceeded.Remaining.Equal(dec("400")))
	})

	t.Run("rejected create leaves totals unchanged", func(t *testing.T) {
		items, err := svc.ListItems(ctx, manager, event.ID)
		require.NoError(t, err)
		require.Len(t, items, 1)

		// The same rejected request fails identically on retry.
		_, err = svc.CreateItem(ctx, manager, event.ID, budget.ItemInput{
			Category:      "venue",
			Name:          "Ballroom hire",
			EstimatedCost: dec("500"),
		})
		var exceeded *budget.ExceededError
		require.ErrorAs(t, err, &exceeded)
		assert.True(t, exceeded.Current.Equal(dec("600")))
	})

	t.Run("allows allocation up to exact equality", func(t *testing.T) {
		item, err := svc.CreateItem(ctx, manager, event.ID, budget.ItemInput{
			Category:      "venue",
			Name:          "Ballroom hire",
			EstimatedCost: dec("400"),
		})
		require.NoError(t, err)
		assert.True(t, item.EstimatedCost.Equal(dec("400")))
	})

	t.Run("rejects negative estimate", func(t *testing.T) {
		_, err := svc.CreateItem(ctx, manager, event.ID, budget.ItemInput{
			Name:          "Refund",
			EstimatedCost: dec("-5"),
		})
		assert.ErrorIs(t, err, budget.ErrNegativeAmount)
	})

	t.Run("event in another organization reads as not found", func(t *testing.T) {
		outsider := testutil.CreateTestUser(t, db, "Rival Corp", models.RoleAccountManager)
		_, err := svc.CreateItem(ctx, outsider, event.ID, budget.ItemInput{
			Name:          "Spy catering",
			EstimatedCost: dec("1"),
		})
		assert.ErrorIs(t, err, access.ErrNotFound)
	})
}

func TestService_UpdateItem(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := budget.NewService(db)
	ctx := testutil.TestContext(t)

	manager := testutil.CreateTestUser(t, db, "Acme Events", models.RoleAccountManager)
	event := testutil.CreateTestEvent(t, db, manager, "1000")
	item := testutil.CreateTestBudgetItem(t, db, event.ID, "catering", "Lunch", "600")
	testutil.CreateTestBudgetItem(t, db, event.ID, "venue", "Hall", "300")

	t.Run("raising an estimate within headroom succeeds", func(t *testing.T) {
		updated, err := svc.UpdateItem(ctx, manager, item.ID, budget.ItemInput{
			Category:      "catering",
			Name:          "Lunch",
			EstimatedCost: dec("700"),
		})
		require.NoError(t, err)
		assert.True(t, updated.EstimatedCost.Equal(dec("700")))
	})

	t.Run("raising an estimate past the ceiling fails", func(t *testing.T) {
		_, err := svc.UpdateItem(ctx, manager, item.ID, budget.ItemInput{
			Category:      "catering",
			Name:          "Lunch",
			EstimatedCost: dec("701"),
		})
		var exceeded *budget.ExceededError
		require.ErrorAs(t, err, &exceeded)
	})

	t.Run("lowering an estimate always succeeds", func(t *testing.T) {
		updated, err := svc.UpdateItem(ctx, manager, item.ID, budget.ItemInput{
			Category:      "catering",
			Name:          "Lunch",
			EstimatedCost: dec("100"),
		})
		require.NoError(t, err)
		assert.True(t, updated.EstimatedCost.Equal(dec("100")))
	})

	t.Run("unknown item is not found", func(t *testing.T) {
		_, err := svc.UpdateItem(ctx, manager, uuid.New(), budget.ItemInput{
			Name:          "Ghost",
			EstimatedCost: dec("1"),
		})
		assert.ErrorIs(t, err, access.ErrNotFound)
	})
}

func TestService_DeleteItem(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := budget.NewService(db)
	ctx := testutil.TestContext(t)

	manager := testutil.CreateTestUser(t, db, "Acme Events", models.RoleAccountManager)
	event := testutil.CreateTestEvent(t, db, manager, "1000")

	t.Run("blocks delete while expenses reference the item", func(t *testing.T) {
		item := testutil.CreateTestBudgetItem(t, db, event.ID, "catering", "Lunch", "200")
		testutil.CreateTestExpense(t, db, event.ID, &item.ID, "Deposit", "50")

		err := svc.DeleteItem(ctx, manager, item.ID)
		assert.ErrorIs(t, err, budget.ErrHasLinkedExpenses)

		// Item survives the rejected delete.
		var count int64
		require.NoError(t, db.Model(&models.BudgetItem{}).Where("id = ?", item.ID).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("deletes an unlinked item", func(t *testing.T) {
		item := testutil.CreateTestBudgetItem(t, db, event.ID, "venue", "Hall", "200")
		require.NoError(t, svc.DeleteItem(ctx, manager, item.ID))

		_, err := svc.UpdateItem(ctx, manager, item.ID, budget.ItemInput{Name: "Hall", EstimatedCost: dec("1")})
		assert.ErrorIs(t, err, access.ErrNotFound)
	})
}

func TestService_CreateExpense(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := budget.NewService(db)
	ctx := testutil.TestContext(t)

	manager := testutil.CreateTestUser(t, db, "Acme Events", models.RoleAccountManager)
	event := testutil.CreateTestEvent(t, db, manager, "1000")

	t.Run("records spend within budget", func(t *testing.T) {
		expense, err := svc.CreateExpense(ctx, manager, event.ID, budget.ExpenseInput{
			Name:   "Florist",
			Amount: dec("900"),
		})
		require.NoError(t, err)
		assert.False(t, expense.ExpenseDate.IsZero())
	})

	t.Run("rejects spend past the ceiling with remaining headroom", func(t *testing.T) {
		_, err := svc.CreateExpense(ctx, manager, event.ID, budget.ExpenseInput{
			Name:   "Band",
			Amount: dec("150"),
		})
		var exceeded *budget.ExceededError
		require.ErrorAs(t, err, &exceeded)
		assert.True(t, exceeded.Current.Equal(dec("900")))
		assert.True(t, exceeded.Attempted.Equal(dec("150")))
		assert.True(t, exceeded.Remaining.Equal(dec("100")))
	})

	t.Run("allows spend up to exact equality", func(t *testing.T) {
		_, err := svc.CreateExpense(ctx, manager, event.ID, budget.ExpenseInput{
			Name:   "Band",
			Amount: dec("100"),
		})
		require.NoError(t, err)
	})

	t.Run("spend is independent of allocations", func(t *testing.T) {
		// Allocations already at the ceiling must not block recorded spend.
		other := testutil.CreateTestEvent(t, db, manager, "500")
		testutil.CreateTestBudgetItem(t, db, other.ID, "venue", "Hall", "500")

		_, err := svc.CreateExpense(ctx, manager, other.ID, budget.ExpenseInput{
			Name:   "Venue deposit",
			Amount: dec("500"),
		})
		require.NoError(t, err)
	})

	t.Run("linked item must belong to the same event", func(t *testing.T) {
		other := testutil.CreateTestEvent(t, db, manager, "500")
		foreign := testutil.CreateTestBudgetItem(t, db, other.ID, "venue", "Hall", "10")

		_, err := svc.CreateExpense(ctx, manager, event.ID, budget.ExpenseInput{
			BudgetItemID: &foreign.ID,
			Name:         "Mismatched",
			Amount:       dec("1"),
		})
		assert.ErrorIs(t, err, access.ErrNotFound)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := svc.CreateExpense(ctx, manager, event.ID, budget.ExpenseInput{
			Name:   "Refund",
			Amount: dec("-1"),
		})
		assert.ErrorIs(t, err, budget.ErrNegativeAmount)
	})
}

func TestService_UpdateExpense(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := budget.NewService(db)
	ctx := testutil.TestContext(t)

	manager := testutil.CreateTestUser(t, db, "Acme Events", models.RoleAccountManager)
	event := testutil.CreateTestEvent(t, db, manager, "1000")
	expense := testutil.CreateTestExpense(t, db, event.ID, nil, "Florist", "800")

	t.Run("raising an amount past the ceiling fails", func(t *testing.T) {
		_, err := svc.UpdateExpense(ctx, manager, expense.ID, budget.ExpenseInput{
			Name:   "Florist",
			Amount: dec("1001"),
		})
		var exceeded *budget.ExceededError
		require.ErrorAs(t, err, &exceeded)
	})

	t.Run("raising an amount to the ceiling succeeds", func(t *testing.T) {
		updated, err := svc.UpdateExpense(ctx, manager, expense.ID, budget.ExpenseInput{
			Name:   "Florist",
			Amount: dec("1000"),
		})
		require.NoError(t, err)
		assert.True(t, updated.Amount.Equal(dec("1000")))
	})
}

func TestService_DeleteExpense(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := budget.NewService(db)
	ctx := testutil.TestContext(t)

	manager := testutil.CreateTestUser(t, db, "Acme Events", models.RoleAccountManager)
	event := testutil.CreateTestEvent(t, db, manager, "1000")
	expense := testutil.CreateTestExpense(t, db, event.ID, nil, "Florist", "800")

	t.Run("delete frees headroom", func(t *testing.T) {
		require.NoError(t, svc.DeleteExpense(ctx, manager, expense.ID))

		_, err := svc.CreateExpense(ctx, manager, event.ID, budget.ExpenseInput{
			Name:   "Band",
			Amount: dec("1000"),
		})
		require.NoError(t, err)
	})

	t.Run("unknown expense is not found", func(t *testing.T) {
		err := svc.DeleteExpense(ctx, manager, uuid.New())
		assert.True(t, errors.Is(err, access.ErrNotFound))
	})
}

func TestService_Listing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := budget.NewService(db)
	ctx := testutil.TestContext(t)

	manager := testutil.CreateTestUser(t, db, "Acme Events", models.RoleAccountManager)
	outsider := testutil.CreateTestUser(t, db, "Rival Corp", models.RoleAccountManager)
	event := testutil.CreateTestEvent(t, db, manager, "1000")
	testutil.CreateTestBudgetItem(t, db, event.ID, "catering", "Lunch", "100")
	testutil.CreateTestExpense(t, db, event.ID, nil, "Florist", "50")

	t.Run("lists items and expenses for org members", func(t *testing.T) {
		items, err := svc.ListItems(ctx, manager, event.ID)
		require.NoError(t, err)
		assert.Len(t, items, 1)

		expenses, err := svc.ListExpenses(ctx, manager, event.ID)
		require.NoError(t, err)
		assert.Len(t, expenses, 1)
	})

	t.Run("cross-org listing is not found", func(t *testing.T) {
		_, err := svc.ListItems(ctx, outsider, event.ID)
		assert.ErrorIs(t, err, access.ErrNotFound)

		_, err = svc.ListExpenses(ctx, outsider, event.ID)
		assert.ErrorIs(t, err, access.ErrNotFound)
	})
}

package team_test

import (
	"testing"

	"github.com/eventra/eventra/internal/access"
	"github.com/eventra/eventra/internal/database/models"
	"github.com/eventra/eventra/internal/team"
	"github.com/eventra/eventra/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_CreateUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := team.NewService(db)
	ctx := testutil.TestContext(t)

	manager := testutil.CreateTestUser(t, db, "Acme Events", models.RoleAccountManager)
	lead := testutil.CreateTestUser(t, db, "Acme Events", models.RoleTeamLead)

	t.Run("manager provisions a team lead", func(t *testing.T) {
		user, err := svc.CreateUser(ctx, manager, team.CreateUserInput{
			Email:    "new.lead@example.com",
			Name:     "New Lead",
			Password: "longenoughpass",
			Role:     models.RoleTeamLead,
		})
		require.NoError(t, err)
		assert.Equal(t, "Acme Events", user.Organization)
		assert.True(t, user.IsActive)
		assert.NotEqual(t, "longenoughpass", user.PasswordHash)
	})

	t.Run("manager role cannot be minted", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, manager, team.CreateUserInput{
			Email:    "peer@example.com",
			Name:     "Peer",
			Password: "longenoughpass",
			Role:     models.RoleAccountManager,
		})
		assert.ErrorIs(t, err, team.ErrInvalidRole)
	})

	t.Run("non-manager is forbidden", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, lead, team.CreateUserInput{
			Email:    "minion@example.com",
			Name:     "Minion",
			Password: "longenoughpass",
			Role:     models.RoleTeamMember,
		})
		assert.ErrorIs(t, err, access.ErrForbidden)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, manager, team.CreateUserInput{
			Email:    "new.lead@example.com",
			Name:     "Duplicate",
			Password: "longenoughpass",
			Role:     models.RoleTeamMember,
		})
		assert.ErrorIs(t, err, team.ErrEmailTaken)
	})
}

func TestService_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := team.NewService(db)
	ctx := testutil.TestContext(t)

	manager := testutil.CreateTestUser(t, db, "Acme Events", models.RoleAccountManager)
	lead := testutil.CreateTestUser(t, db, "Acme Events", models.RoleTeamLead)
	testutil.CreateTestUser(t, db, "Rival Corp", models.RoleAccountManager)

	t.Run("excludes self and other orgs", func(t *testing.T) {
		users, err := svc.List(ctx, manager)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, lead.ID, users[0].ID)
	})

	t.Run("any member may list", func(t *testing.T) {
		users, err := svc.List(ctx, lead)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, manager.ID, users[0].ID)
	})
}

func TestService_DeleteMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := team.NewService(db)
	ctx := testutil.TestContext(t)

	manager := testutil.CreateTestUser(t, db, "Acme Events", models.RoleAccountManager)

	t.Run("manager removes a member", func(t *testing.T) {
		member := testutil.CreateTestUser(t, db, "Acme Events", models.RoleTeamMember)
		require.NoError(t, svc.DeleteMember(ctx, manager, member.ID))

		err := svc.DeleteMember(ctx, manager, member.ID)
		assert.ErrorIs(t, err, access.ErrNotFound)
	})

	t.Run("cross-org target reads as not found", func(t *testing.T) {
		foreign := testutil.CreateTestUser(t, db, "Rival Corp", models.RoleTeamMember)
		err := svc.DeleteMember(ctx, manager, foreign.ID)
		assert.ErrorIs(t, err, access.ErrNotFound)
	})

	t.Run("peer manager is protected", func(t *testing.T) {
		peer := testutil.CreateTestUser(t, db, "Acme Events", models.RoleAccountManager)
		err := svc.DeleteMember(ctx, manager, peer.ID)
		assert.ErrorIs(t, err, access.ErrForbidden)
	})

	t.Run("unknown target is not found", func(t *testing.T) {
		err := svc.DeleteMember(ctx, manager, uuid.New())
		assert.ErrorIs(t, err, access.ErrNotFound)
	})
}

func TestService_DeleteOwnAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := team.NewService(db)
	ctx := testutil.TestContext(t)

	t.Run("manager with members is blocked", func(t *testing.T) {
		manager := testutil.CreateTestUser(t, db, "Blocked Org", models.RoleAccountManager)
		testutil.CreateTestUser(t, db, "Blocked Org", models.RoleTeamMember)

		err := svc.DeleteOwnAccount(ctx, manager)
		assert.ErrorIs(t, err, team.ErrTeamNotEmpty)
	})

	t.Run("solo manager may leave", func(t *testing.T) {
		manager := testutil.CreateTestUser(t, db, "Solo Org", models.RoleAccountManager)
		require.NoError(t, svc.DeleteOwnAccount(ctx, manager))

		var count int64
		require.NoError(t, db.Model(&models.User{}).Where("organization = ?", "Solo Org").Count(&count).Error)
		assert.EqualValues(t, 0, count)
	})

	t.Run("member may always leave", func(t *testing.T) {
		testutil.CreateTestUser(t, db, "Member Org", models.RoleAccountManager)
		member := testutil.CreateTestUser(t, db, "Member Org", models.RoleTeamMember)
		require.NoError(t, svc.DeleteOwnAccount(ctx, member))
	})
}

func TestService_DeleteOrganization(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := team.NewService(db)
	ctx := testutil.TestContext(t)

	manager := testutil.CreateTestUser(t, db, "Doomed Org", models.RoleAccountManager)
	member := testutil.CreateTestUser(t, db, "Doomed Org", models.RoleTeamMember)
	survivorBoss := testutil.CreateTestUser(t, db, "Survivor Org", models.RoleAccountManager)

	event := testutil.CreateTestEvent(t, db, manager, "1000")
	item := testutil.CreateTestBudgetItem(t, db, event.ID, "catering", "Lunch", "100")
	testutil.CreateTestExpense(t, db, event.ID, &item.ID, "Deposit", "50")
	testutil.CreateTestChecklistItem(t, db, event.ID, "Setup", &member.ID)
	survivorEvent := testutil.CreateTestEvent(t, db, survivorBoss, "500")

	t.Run("non-manager is forbidden", func(t *testing.T) {
		err := svc.DeleteOrganization(ctx, member)
		assert.ErrorIs(t, err, access.ErrForbidden)
	})

	t.Run("cascade removes org data and nothing else", func(t *testing.T) {
		require.NoError(t, svc.DeleteOrganization(ctx, manager))

		var users, eventsLeft, items, expenses, checklists int64
		require.NoError(t, db.Model(&models.User{}).Where("organization = ?", "Doomed Org").Count(&users).Error)
		require.NoError(t, db.Model(&models.Event{}).Where("organization = ?", "Doomed Org").Count(&eventsLeft).Error)
		require.NoError(t, db.Model(&models.BudgetItem{}).Where("event_id = ?", event.ID).Count(&items).Error)
		require.NoError(t, db.Model(&models.Expense{}).Where("event_id = ?", event.ID).Count(&expenses).Error)
		require.NoError(t, db.Model(&models.ChecklistItem{}).Where("event_id = ?", event.ID).Count(&checklists).Error)

		assert.Zero(t, users)
		assert.Zero(t, eventsLeft)
		assert.Zero(t, items)
		assert.Zero(t, expenses)
		assert.Zero(t, checklists)

		// Other organizations are untouched.
		var survivors int64
		require.NoError(t, db.Model(&models.Event{}).Where("id = ?", survivorEvent.ID).Count(&survivors).Error)
		assert.EqualValues(t, 1, survivors)
	})
}

package access_test

import (
	"testing"

	"github.com/eventra/eventra/internal/access"
	"github.com/eventra/eventra/internal/database/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func user(org string, role models.Role) *models.User {
	return &models.User{
		Base:         models.Base{ID: uuid.New()},
		Organization: org,
		Role:         role,
	}
}

func TestCreateEvent(t *testing.T) {
	assert.NoError(t, access.CreateEvent(user("acme", models.RoleAccountManager)))
	assert.ErrorIs(t, access.CreateEvent(user("acme", models.RoleTeamLead)), access.ErrForbidden)
	assert.ErrorIs(t, access.CreateEvent(user("acme", models.RoleTeamMember)), access.ErrForbidden)
}

func TestUpdateEvent(t *testing.T) {
	manager := user("acme", models.RoleAccountManager)
	lead := user("acme", models.RoleTeamLead)
	member := user("acme", models.RoleTeamMember)
	outsider := user("rival", models.RoleAccountManager)

	event := &models.Event{Organization: "acme", TeamLeadID: &lead.ID}

	t.Run("manager updates any event in their org", func(t *testing.T) {
		assert.NoError(t, access.UpdateEvent(manager, event))
	})

	t.Run("lead updates only their own event", func(t *testing.T) {
		assert.NoError(t, access.UpdateEvent(lead, event))

		otherLead := user("acme", models.RoleTeamLead)
		assert.ErrorIs(t, access.UpdateEvent(otherLead, event), access.ErrForbidden)
	})

	t.Run("member may not update", func(t *testing.T) {
		assert.ErrorIs(t, access.UpdateEvent(member, event), access.ErrForbidden)
	})

	t.Run("cross-org reads as not found", func(t *testing.T) {
		assert.ErrorIs(t, access.UpdateEvent(outsider, event), access.ErrNotFound)
	})

	t.Run("lead without assignment on unassigned event", func(t *testing.T) {
		unassigned := &models.Event{Organization: "acme"}
		assert.ErrorIs(t, access.UpdateEvent(lead, unassigned), access.ErrForbidden)
	})
}

func TestViewEvent(t *testing.T) {
	manager := user("acme", models.RoleAccountManager)
	lead := user("acme", models.RoleTeamLead)
	member := user("acme", models.RoleTeamMember)

	event := &models.Event{Organization: "acme", TeamLeadID: &lead.ID}

	assert.NoError(t, access.ViewEvent(manager, event, false))
	assert.NoError(t, access.ViewEvent(lead, event, false))

	t.Run("member needs a checklist assignment", func(t *testing.T) {
		assert.ErrorIs(t, access.ViewEvent(member, event, false), access.ErrForbidden)
		assert.NoError(t, access.ViewEvent(member, event, true))
	})

	t.Run("lead of a different event is forbidden", func(t *testing.T) {
		otherLead := user("acme", models.RoleTeamLead)
		assert.ErrorIs(t, access.ViewEvent(otherLead, event, false), access.ErrForbidden)
	})

	t.Run("cross-org reads as not found regardless of role", func(t *testing.T) {
		outsider := user("rival", models.RoleAccountManager)
		assert.ErrorIs(t, access.ViewEvent(outsider, event, true), access.ErrNotFound)
	})
}

func TestTouchEventResource(t *testing.T) {
	member := user("acme", models.RoleTeamMember)
	event := &models.Event{Organization: "acme"}

	assert.NoError(t, access.TouchEventResource(member, event))
	assert.ErrorIs(t, access.TouchEventResource(user("rival", models.RoleTeamMember), event), access.ErrNotFound)
}

func TestDeleteTeamMember(t *testing.T) {
	manager := user("acme", models.RoleAccountManager)
	member := user("acme", models.RoleTeamMember)

	t.Run("manager removes own team member", func(t *testing.T) {
		assert.NoError(t, access.DeleteTeamMember(manager, member))
	})

	t.Run("non-manager is forbidden", func(t *testing.T) {
		lead := user("acme", models.RoleTeamLead)
		assert.ErrorIs(t, access.DeleteTeamMember(lead, member), access.ErrForbidden)
	})

	t.Run("cross-org target reads as not found", func(t *testing.T) {
		foreign := user("rival", models.RoleTeamMember)
		assert.ErrorIs(t, access.DeleteTeamMember(manager, foreign), access.ErrNotFound)
	})

	t.Run("peer manager cannot be removed", func(t *testing.T) {
		peer := user("acme", models.RoleAccountManager)
		assert.ErrorIs(t, access.DeleteTeamMember(manager, peer), access.ErrForbidden)
	})
}

func TestDeleteOwnAccount(t *testing.T) {
	manager := user("acme", models.RoleAccountManager)
	member := user("acme", models.RoleTeamMember)

	assert.ErrorIs(t, access.DeleteOwnAccount(manager, 2), access.ErrForbidden)
	assert.NoError(t, access.DeleteOwnAccount(manager, 0))
	assert.NoError(t, access.DeleteOwnAccount(member, 5))
}

func TestDeleteOrganization(t *testing.T) {
	assert.NoError(t, access.DeleteOrganization(user("acme", models.RoleAccountManager)))
	assert.ErrorIs(t, access.DeleteOrganization(user("acme", models.RoleTeamLead)), access.ErrForbidden)
}

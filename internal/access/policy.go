// Package access holds the per-action authorization rules. Every rule is a
// pure function over the acting user and the target entity, so each row of
// the permission table can be tested with arbitrary (user, role, org) tuples.
package access

import (
	"errors"

	"github.com/eventra/eventra/internal/database/models"
)

var (
	// ErrForbidden means the actor is known but not allowed.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned for entities outside the actor's organization
	// as well as for entities that do not exist, so callers cannot probe
	// for resources across organization boundaries.
	ErrNotFound = errors.New("not found")
)

// CreateEvent: account managers only.
func CreateEvent(actor *models.User) error {
	if !actor.IsAccountManager() {
		return ErrForbidden
	}
	return nil
}

// UpdateEvent: an account manager may update any event in their own
// organization; a team lead may update only events they lead.
func UpdateEvent(actor *models.User, event *models.Event) error {
	if event.Organization != actor.Organization {
		return ErrNotFound
	}
	if actor.IsAccountManager() {
		return nil
	}
	if actor.IsTeamLead() && event.TeamLeadID != nil && *event.TeamLeadID == actor.ID {
		return nil
	}
	return ErrForbidden
}

// ViewEvent gates summaries and single-event reads. hasAssignment reports
// whether the actor holds a checklist assignment on the event; it is supplied
// by the caller so this stays a pure rule.
func ViewEvent(actor *models.User, event *models.Event, hasAssignment bool) error {
	if event.Organization != actor.Organization {
		return ErrNotFound
	}
	switch {
	case actor.IsAccountManager():
		return nil
	case actor.IsTeamLead() && event.TeamLeadID != nil && *event.TeamLeadID == actor.ID:
		return nil
	case actor.IsTeamMember() && hasAssignment:
		return nil
	}
	return ErrForbidden
}

// TouchEventResource gates budget-item, expense and checklist mutations.
// Beyond authentication the only requirement is that the event belongs to the
// actor's organization; within an organization any member may record against
// an event's budget.
func TouchEventResource(actor *models.User, event *models.Event) error {
	if event.Organization != actor.Organization {
		return ErrNotFound
	}
	return nil
}

// CreateTeamUser: account managers only, and only for the two subordinate
// roles. Role validity is checked by the team service.
func CreateTeamUser(actor *models.User) error {
	if !actor.IsAccountManager() {
		return ErrForbidden
	}
	return nil
}

// DeleteTeamMember: account managers may remove team members of their own
// organization. Targets in other organizations read as not found; peer
// account managers cannot be removed through this path.
func DeleteTeamMember(actor, target *models.User) error {
	if !actor.IsAccountManager() {
		return ErrForbidden
	}
	if target.Organization != actor.Organization {
		return ErrNotFound
	}
	if target.IsAccountManager() {
		return ErrForbidden
	}
	return nil
}

// DeleteOwnAccount: anyone may delete themselves, except an account manager
// who still has team members; they must offload the team first (or use the
// explicit cascading organization delete).
func DeleteOwnAccount(actor *models.User, remainingMembers int64) error {
	if actor.IsAccountManager() && remainingMembers > 0 {
		return ErrForbidden
	}
	return nil
}

// DeleteOrganization: the explicit cascading path. Only an account manager
// may take their whole organization down.
func DeleteOrganization(actor *models.User) error {
	if !actor.IsAccountManager() {
		return ErrForbidden
	}
	return nil
}

package events

import (
	"fmt"

	"github.com/lossdesk/lossdesk/internal/platform/httpx"
	"github.com/lossdesk/lossdesk/internal/rbac"
)

// Lifecycle errors. They wrap the httpx sentinels so handlers map them to
// problem responses without string inspection.
var (
	ErrInvalidTransition = fmt.Errorf("%w: status transition not allowed", httpx.ErrConflict)
	ErrRecordLocked      = fmt.Errorf("%w: approved events are locked against changes", httpx.ErrLocked)
	ErrPermissionDenied  = fmt.Errorf("%w: role lacks the required permission", httpx.ErrForbidden)
)

// transitions is the authoritative legality table. Every mutation path goes
// through CheckTransition; nothing writes a status directly.
var transitions = map[EventStatus]map[EventStatus]struct{}{
	StatusDraft: {
		StatusSubmitted: {},
	},
	StatusSubmitted: {
		StatusApproved: {},
		StatusRejected: {},
	},
	StatusApproved: {
		StatusExported: {},
	},
}

// transitionPerms names the permission each transition requires.
var transitionPerms = map[EventStatus]map[EventStatus]string{
	StatusDraft: {
		StatusSubmitted: rbac.PermEventsSubmit,
	},
	StatusSubmitted: {
		StatusApproved: rbac.PermEventsApprove,
		StatusRejected: rbac.PermEventsApprove,
	},
	StatusApproved: {
		StatusExported: rbac.PermEventsExport,
	},
}

// CanTransition reports whether from→to appears in the legality table.
func CanTransition(from, to EventStatus) bool {
	next, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// CheckTransition validates a status move for the acting role. It returns
// ErrInvalidTransition for moves outside the table and ErrPermissionDenied
// when the role lacks the transition's permission.
func CheckTransition(from, to EventStatus, role rbac.Role) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	perm := transitionPerms[from][to]
	if !rbac.HasPermission(role, perm) {
		return fmt.Errorf("%w: %s needs %s", ErrPermissionDenied, to, perm)
	}
	return nil
}

// CheckMutable validates an edit or delete of the event body. EXPORTED
// events are always immutable; APPROVED events are immutable while the
// installation-wide approved-lock flag is on, regardless of role grants.
func CheckMutable(status EventStatus, lockApproved bool) error {
	if status == StatusExported {
		return fmt.Errorf("%w: event already exported", ErrRecordLocked)
	}
	if status == StatusApproved && lockApproved {
		return ErrRecordLocked
	}
	return nil
}

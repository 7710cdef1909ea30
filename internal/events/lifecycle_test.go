package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lossdesk/lossdesk/internal/rbac"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from EventStatus
		to   EventStatus
		ok   bool
	}{
		{StatusDraft, StatusSubmitted, true},
		{StatusSubmitted, StatusApproved, true},
		{StatusSubmitted, StatusRejected, true},
		{StatusApproved, StatusExported, true},
		{StatusDraft, StatusApproved, false},
		{StatusDraft, StatusRejected, false},
		{StatusDraft, StatusExported, false},
		{StatusSubmitted, StatusExported, false},
		{StatusSubmitted, StatusDraft, false},
		{StatusApproved, StatusSubmitted, false},
		{StatusApproved, StatusRejected, false},
		{StatusRejected, StatusApproved, false},
		{StatusRejected, StatusSubmitted, false},
		{StatusExported, StatusApproved, false},
	}
	for _, tc := range cases {
		require.Equalf(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCheckTransitionPermissions(t *testing.T) {
	// Employees may submit their drafts but never decide.
	require.NoError(t, CheckTransition(StatusDraft, StatusSubmitted, rbac.RoleEmployee))
	err := CheckTransition(StatusSubmitted, StatusApproved, rbac.RoleEmployee)
	require.ErrorIs(t, err, ErrPermissionDenied)

	require.NoError(t, CheckTransition(StatusSubmitted, StatusApproved, rbac.RoleManager))
	require.NoError(t, CheckTransition(StatusSubmitted, StatusRejected, rbac.RoleManager))
	require.NoError(t, CheckTransition(StatusApproved, StatusExported, rbac.RoleOwner))

	// Auditors read, never move anything.
	err = CheckTransition(StatusDraft, StatusSubmitted, rbac.RoleAuditor)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCheckTransitionIllegalBeforePermission(t *testing.T) {
	// An illegal move reports the transition error even for a role that
	// would have the permission.
	err := CheckTransition(StatusDraft, StatusApproved, rbac.RoleOwner)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.False(t, errors.Is(err, ErrPermissionDenied))
}

func TestCheckMutable(t *testing.T) {
	require.NoError(t, CheckMutable(StatusDraft, true))
	require.NoError(t, CheckMutable(StatusSubmitted, true))
	require.NoError(t, CheckMutable(StatusRejected, true))

	require.ErrorIs(t, CheckMutable(StatusApproved, true), ErrRecordLocked)
	require.NoError(t, CheckMutable(StatusApproved, false))

	// Exported events are immutable regardless of the lock flag.
	require.ErrorIs(t, CheckMutable(StatusExported, false), ErrRecordLocked)
	require.ErrorIs(t, CheckMutable(StatusExported, true), ErrRecordLocked)
}

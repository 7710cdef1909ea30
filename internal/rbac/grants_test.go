package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGrantedKeysEvaluateTrue(t *testing.T) {
	for _, role := range Roles() {
		for _, key := range Grants(role) {
			require.True(t, HasPermission(role, key), "role %s should hold %s", role, key)
		}
	}
}

func TestUngrantedKeysEvaluateFalse(t *testing.T) {
	all := append(EventScopes(), CoreScopes()...)
	for _, role := range Roles() {
		held := make(map[string]struct{})
		for _, key := range Grants(role) {
			held[key] = struct{}{}
		}
		for _, key := range all {
			if _, ok := held[key]; ok {
				continue
			}
			require.False(t, HasPermission(role, key), "role %s should not hold %s", role, key)
		}
	}
}

func TestUnknownKeyIsFalseNotError(t *testing.T) {
	require.False(t, HasPermission(RoleOwner, "events:frobnicate"))
	require.False(t, HasPermission(Role("intern"), PermEventsCreate))
	require.False(t, HasPermission(RoleManager, ""))
}

func TestOwnerIsSupersetOfManager(t *testing.T) {
	for _, key := range Grants(RoleManager) {
		require.True(t, HasPermission(RoleOwner, key), "owner missing manager grant %s", key)
	}
}

func TestEmployeeCannotViewAllEvents(t *testing.T) {
	require.False(t, HasPermission(RoleEmployee, PermEventsViewAll))
	require.True(t, HasPermission(RoleEmployee, PermEventsCreate))
}

func TestManagerCanApprove(t *testing.T) {
	require.True(t, HasPermission(RoleManager, PermEventsApprove))
	require.False(t, HasPermission(RoleEmployee, PermEventsApprove))
	require.False(t, HasPermission(RoleAuditor, PermEventsApprove))
}

func TestGalleryVisibilityCarveOut(t *testing.T) {
	// Employees hold the static grant but remain gated by the settings flag.
	require.False(t, GalleryVisible(RoleEmployee, false))
	require.True(t, GalleryVisible(RoleEmployee, true))

	// Other roles follow the static table only.
	require.True(t, GalleryVisible(RoleManager, false))
	require.True(t, GalleryVisible(RoleOwner, false))
	require.True(t, GalleryVisible(RoleAuditor, false))
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole(" Manager ")
	require.True(t, ok)
	require.Equal(t, RoleManager, role)

	_, ok = ParseRole("superuser")
	require.False(t, ok)
}

package rbac

// grants is the static role→permission table. It is defined once at build
// time and never mutated; every role's exact capability set can be read off
// this table without tracing inheritance. Owner deliberately repeats the
// manager grants instead of referencing them.
var grants = map[Role]map[string]struct{}{
	RoleEmployee: permSet(
		PermEventsCreate,
		PermEventsViewOwn,
		PermEventsSubmit,
		PermCatalogView,
		PermEvidenceView,
		PermEvidenceUpload,
	),
	RoleManager: permSet(
		PermEventsCreate,
		PermEventsViewOwn,
		PermEventsViewAll,
		PermEventsEdit,
		PermEventsDelete,
		PermEventsSubmit,
		PermEventsApprove,
		PermEventsExport,
		PermCatalogView,
		PermCatalogEdit,
		PermEvidenceView,
		PermEvidenceUpload,
		PermEvidenceDelete,
		PermInvoicesView,
		PermInvoicesManage,
		PermReportsView,
		PermReportsExport,
		PermUsersView,
		PermSettingsView,
	),
	RoleAuditor: permSet(
		PermEventsViewAll,
		PermCatalogView,
		PermEvidenceView,
		PermInvoicesView,
		PermReportsView,
		PermSettingsView,
		PermAuditView,
	),
	RoleOwner: permSet(
		PermEventsCreate,
		PermEventsViewOwn,
		PermEventsViewAll,
		PermEventsEdit,
		PermEventsDelete,
		PermEventsSubmit,
		PermEventsApprove,
		PermEventsExport,
		PermCatalogView,
		PermCatalogEdit,
		PermEvidenceView,
		PermEvidenceUpload,
		PermEvidenceDelete,
		PermInvoicesView,
		PermInvoicesManage,
		PermReportsView,
		PermReportsExport,
		PermUsersView,
		PermUsersManage,
		PermSettingsView,
		PermSettingsManage,
		PermAuditView,
	),
}

func permSet(perms ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// HasPermission reports whether the role holds the permission key. Unknown
// roles and unknown keys evaluate to false; the lookup never errors.
func HasPermission(role Role, key string) bool {
	set, ok := grants[role]
	if !ok {
		return false
	}
	_, ok = set[key]
	return ok
}

// Grants returns a copy of the permission keys held by the role.
func Grants(role Role) []string {
	set, ok := grants[role]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	return keys
}

// GalleryVisible decides whether the evidence gallery is reachable for the
// role. Employees carry the static evidence:view grant, but their access is
// additionally gated by a per-installation settings flag. This is the single
// contextual exception to the static table.
func GalleryVisible(role Role, allowEmployeeGallery bool) bool {
	if !HasPermission(role, PermEvidenceView) {
		return false
	}
	if role == RoleEmployee {
		return allowEmployeeGallery
	}
	return true
}

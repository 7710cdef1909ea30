package rbac

// Catalog permissions.
const (
	PermCatalogView = "catalog:view"
	PermCatalogEdit = "catalog:edit"
)

// Evidence gallery permissions.
const (
	PermEvidenceView   = "evidence:view"
	PermEvidenceUpload = "evidence:upload"
	PermEvidenceDelete = "evidence:delete"
)

// Invoice permissions.
const (
	PermInvoicesView   = "invoices:view"
	PermInvoicesManage = "invoices:manage"
)

// Report and dashboard permissions.
const (
	PermReportsView   = "reports:view"
	PermReportsExport = "reports:export"
)

// Platform administration permissions.
const (
	PermUsersView      = "users:view"
	PermUsersManage    = "users:manage"
	PermSettingsView   = "settings:view"
	PermSettingsManage = "settings:manage"
	PermAuditView      = "audit:view"
)

// CoreScopes lists all permissions outside the loss event namespace.
func CoreScopes() []string {
	return []string{
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
	}
}

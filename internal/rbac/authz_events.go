package rbac

// Loss event permissions.
const (
	PermEventsCreate  = "events:create"
	PermEventsViewOwn = "events:view_own"
	PermEventsViewAll = "events:view_all"
	PermEventsEdit    = "events:edit"
	PermEventsDelete  = "events:delete"
	PermEventsSubmit  = "events:submit"
	PermEventsApprove = "events:approve"
	PermEventsExport  = "events:export"
)

// EventScopes lists all permissions related to loss events.
func EventScopes() []string {
	return []string{
		PermEventsCreate,
		PermEventsViewOwn,
		PermEventsViewAll,
		PermEventsEdit,
		PermEventsDelete,
		PermEventsSubmit,
		PermEventsApprove,
		PermEventsExport,
	}
}

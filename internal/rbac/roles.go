package rbac

import "strings"

// Role enumerates the actor types known to the system. The set is fixed;
// there are no per-user overrides or role inheritance.
type Role string

const (
	// RoleEmployee records shrinkage events on the floor.
	RoleEmployee Role = "employee"
	// RoleManager reviews and decides submitted events.
	RoleManager Role = "manager"
	// RoleAuditor has read access for fiscal review.
	RoleAuditor Role = "auditor"
	// RoleOwner holds every capability a manager has plus administration.
	RoleOwner Role = "owner"
)

// Roles lists all defined roles.
func Roles() []Role {
	return []Role{RoleEmployee, RoleManager, RoleAuditor, RoleOwner}
}

// ParseRole normalises a stored role string. Unknown values return false.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleEmployee:
		return RoleEmployee, true
	case RoleManager:
		return RoleManager, true
	case RoleAuditor:
		return RoleAuditor, true
	case RoleOwner:
		return RoleOwner, true
	}
	return "", false
}

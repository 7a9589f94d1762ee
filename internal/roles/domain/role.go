package domain

// Role is one of the three authorization tiers. A subject may hold several
// simultaneously (a collector is usually also a member).
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCollector Role = "collector"
	RoleMember    Role = "member"
)

// rolePrecedence orders roles for primary-role selection. Display concern
// only; capability checks consult the full set.
var rolePrecedence = []Role{RoleAdmin, RoleCollector, RoleMember}

// PermissionSet is the capability flags derived from the held roles. Always
// recomputed from the role set, never mutated independently.
type PermissionSet struct {
	CanManageUsers      bool
	CanCollectPayments  bool
	CanAccessSystem     bool
	CanViewAudit        bool
	CanManageCollectors bool
}

// HasRole reports whether r is in roles.
func HasRole(roles []Role, r Role) bool {
	for _, have := range roles {
		if have == r {
			return true
		}
	}
	return false
}

// PrimaryRole returns the highest-precedence role in roles, defaulting to
// member when the set is empty.
func PrimaryRole(roles []Role) Role {
	for _, r := range rolePrecedence {
		if HasRole(roles, r) {
			return r
		}
	}
	return RoleMember
}

// PermissionsFor derives the permission set from roles. A nil or empty set
// grants nothing. System tools are admin-only, so a member-only default
// carries no elevated capability.
func PermissionsFor(roles []Role) PermissionSet {
	admin := HasRole(roles, RoleAdmin)
	collector := HasRole(roles, RoleCollector)
	return PermissionSet{
		CanManageUsers:      admin,
		CanCollectPayments:  admin || collector,
		CanAccessSystem:     admin,
		CanViewAudit:        admin,
		CanManageCollectors: admin,
	}
}

// DefaultRoles is the fail-safe role set used when role lookup fails:
// member only, minimal permissions, never elevated.
func DefaultRoles() []Role {
	return []Role{RoleMember}
}

package domain

// Role is the closed set of actor roles in the directory. Authorization is
// expressed through capability checks on the role, never through ad-hoc
// string comparisons at call sites.
type Role string

const (
	RoleStudent   Role = "student"
	RoleWarden    Role = "warden"
	RoleStaff     Role = "staff"
	RoleHoD       Role = "hod"
	RolePrincipal Role = "principal"
	RoleAdmin     Role = "admin"
)

// ParseRole validates a raw role string against the enumeration.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleWarden, RoleStaff, RoleHoD, RolePrincipal, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// CanTriage reports whether the role may work grievances at the warden tier:
// mark in progress, post updates, escalate, and resolve non-escalated records.
func (r Role) CanTriage() bool {
	return r == RoleWarden || r == RoleStaff
}

// CanResolveEscalated reports whether the role owns escalated records.
func (r Role) CanResolveEscalated() bool {
	return r == RoleHoD
}

// CanViewAnalytics reports whether the role may read campus-wide statistics.
func (r Role) CanViewAnalytics() bool {
	return r == RolePrincipal || r == RoleAdmin
}

// CanAssignRoles reports whether the role may change another profile's role.
func (r Role) CanAssignRoles() bool {
	return r == RoleAdmin
}

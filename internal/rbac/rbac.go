// Package rbac holds the canonical role set and the tenant access policy.
package rbac

type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleISPAdmin   Role = "ISP_ADMIN"
	RoleISPStaff   Role = "ISP_STAFF"
	RoleClient     Role = "CLIENT"
)

var roles = map[Role]bool{
	RoleSuperAdmin: true,
	RoleAdmin:      true,
	RoleISPAdmin:   true,
	RoleISPStaff:   true,
	RoleClient:     true,
}

func Valid(r Role) bool {
	return roles[r]
}

// Platform reports whether r operates above tenant scoping. Platform roles
// are the only ones allowed a NULL isp_id.
func Platform(r Role) bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

// CanAccessISP decides access to a tenant. Platform roles always pass;
// tenant roles pass only for their own ISP. Pure, evaluated per request.
func CanAccessISP(r Role, userISPID *int, targetISPID int) bool {
	if Platform(r) {
		return true
	}
	return userISPID != nil && *userISPID == targetISPID
}

// CanManageUsers gates user administration within a tenant.
func CanManageUsers(r Role) bool {
	return Platform(r) || r == RoleISPAdmin
}

package auth

import "strings"

// Roles recognized by the system, lowest to highest rank.
const (
	RoleUser    = "USER"
	RoleManager = "MANAGER"
	RoleAdmin   = "ADMIN"
	RoleVP      = "VP"
)

var roleRanks = map[string]int{
	RoleUser:    1,
	RoleManager: 2,
	RoleAdmin:   3,
	RoleVP:      4,
}

// NormalizeRole upper-cases and trims a role string.
func NormalizeRole(role string) string {
	return strings.ToUpper(strings.TrimSpace(role))
}

// Rank returns the hierarchical rank of a role, 0 for unknown roles.
func Rank(role string) int {
	return roleRanks[NormalizeRole(role)]
}

// Satisfies reports whether userRole ranks at or above requiredRole.
func Satisfies(userRole, requiredRole string) bool {
	return Rank(userRole) >= Rank(requiredRole)
}

// Allows implements the route-gate check. This is deliberately not a rank
// comparison: VP passes every gate, an ADMIN requirement matches only ADMIN,
// a MANAGER requirement matches MANAGER or ADMIN, and any other requirement
// passes for every authenticated role. Kept as-is pending product sign-off
// on normalizing it to Satisfies.
func Allows(userRole, requiredRole string) bool {
	user := NormalizeRole(userRole)
	if user == RoleVP {
		return true
	}

	switch NormalizeRole(requiredRole) {
	case RoleAdmin:
		return user == RoleAdmin
	case RoleManager:
		return user == RoleManager || user == RoleAdmin
	default:
		return user != ""
	}
}

package domain

import "strings"

// Role is the account type tag carried in tokens and profiles.
type Role string

// The closed set of roles the API issues.
const (
	RolePetOwner     Role = "PET_OWNER"
	RoleProfessional Role = "PROFESSIONAL"
	RoleAdmin        Role = "ADMIN"
)

// Roles lists every role a user can hold.
var Roles = []Role{RolePetOwner, RoleProfessional, RoleAdmin}

// ParseRole normalizes a role tag. Unknown tags return false.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// Label returns a short human label for the role.
func (r Role) Label() string {
	switch r {
	case RolePetOwner:
		return "pet owner"
	case RoleProfessional:
		return "professional"
	case RoleAdmin:
		return "admin"
	default:
		return "guest"
	}
}

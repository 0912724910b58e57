package models

// Role is the closed set of account roles carried in access tokens.
type Role string

const (
	RoleUser          Role = "user"
	RoleFacilityOwner Role = "facility_owner"
	RoleAdmin         Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleFacilityOwner, RoleAdmin:
		return true
	}
	return false
}

// Principal identifies the caller of an API request.
type Principal struct {
	UserID string
	Role   Role
}

package models

// Roles a user record can carry.
const (
	RoleUser   = "user"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// User is a registered account. Email is the unique lookup key; role gates
// privileged endpoints.
type User struct {
	ID    string `json:"id" bson:"_id,omitempty"`
	Email string `json:"email" bson:"email"`
	Name  string `json:"name,omitempty" bson:"name,omitempty"`
	Photo string `json:"photo,omitempty" bson:"photo,omitempty"`
	Role  string `json:"role" bson:"role"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

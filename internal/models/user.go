package models

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCreator Role = "creator"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCreator
}

// UserSummary is the identity carried by a session.
type UserSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

func (u UserSummary) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// User is a user-management record. Password is write-only: the backend never
// returns it, and it is omitted from JSON when empty.
type User struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password,omitempty" validate:"required"`
	Role     Role   `json:"role" validate:"required,oneof=admin creator"`
	Name     string `json:"name" validate:"required"`
}

type PasswordChange struct {
	NewPassword string `json:"newPassword" validate:"required"`
}

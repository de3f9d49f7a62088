package domain

import "time"

const (
	RoleAdmin = "admin"

	StatusActive  = "active"
	StatusBlocked = "blocked"
)

// User models a registered account. Email is the natural key.
type User struct {
	ID        string    `json:"_id,omitempty"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Photo     string    `json:"photo,omitempty"`
	Role      string    `json:"role,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user carries the administrator role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserPatch lists the user fields an update may touch. Nil fields are left as-is.
type UserPatch struct {
	Name   *string
	Status *string
	Role   *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Status == nil && p.Role == nil
}

// Package model defines the entities stored by the blog: users, posts and
// comments. Structs carry json tags for the admin JSON endpoints; the json
// shape is the flat column-name → value mapping of the stored row.
package model

// Role is the permission attribute of a User, fixed when the user is created.
type Role string

const (
	RoleRegular Role = "regular"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleRegular || r == RoleAdmin
}

// User is a registered account.
//
// Email is unique across all users and compared exactly as stored.
// PasswordHash holds the bcrypt hash only and is never serialised.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

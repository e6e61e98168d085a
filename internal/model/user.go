package model

import (
	"fmt"
	"time"
)

// Role represents the role of a user.
type Role string

const (
	// RoleAdmin has full task visibility and mutation rights.
	RoleAdmin Role = "admin"
	// RoleMember is scoped to its assigned tasks.
	RoleMember Role = "member"
)

// Valid returns true if the role is a known one.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// User represents an application user.
type User struct {
	ID              string
	Name            string
	Email           string
	PasswordHash    string
	Role            Role
	ProfileImageURL string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate validates the user fields.
func (u *User) Validate() error {
	if u.Name == "" {
		return fmt.Errorf("name is required: %w", ErrNotValid)
	}
	if u.Email == "" {
		return fmt.Errorf("email is required: %w", ErrNotValid)
	}
	if !u.Role.Valid() {
		return fmt.Errorf("unknown role %q: %w", u.Role, ErrNotValid)
	}
	return nil
}

// Identity is the per-request claim supplied by the identity provider.
// The core trusts it without re-validating credentials.
type Identity struct {
	UserID string
	Role   Role
}

// IsAdmin returns true when the identity has the admin role.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

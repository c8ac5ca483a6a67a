package users

import (
	"fmt"
	"strings"
)

// RoleType represents a user's role on the platform. Roles are mutually
// exclusive: a user is exactly one of student, teacher or admin.
type RoleType string

const (
	RoleStudent RoleType = "student"
	RoleTeacher RoleType = "teacher"
	RoleAdmin   RoleType = "admin"
)

// Roles returns all recognised roles.
func Roles() []RoleType {
	return []RoleType{RoleStudent, RoleTeacher, RoleAdmin}
}

// Valid reports whether the role is one of the recognised platform roles.
func (r RoleType) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// ParseRole converts a raw string into a RoleType, rejecting anything
// outside the fixed role set.
func ParseRole(s string) (RoleType, error) {
	r := RoleType(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// User is the identity record returned by the platform's auth endpoints
// and cached alongside the session credentials.
type User struct {
	ID     string   `json:"id" validate:"required"`
	Name   string   `json:"name" validate:"required"`
	Email  string   `json:"email" validate:"required,email"`
	Role   RoleType `json:"role" validate:"required,oneof=student teacher admin"`
	Avatar string   `json:"avatar,omitempty"`
}

// SameIdentity reports whether the user record refers to the same identity
// as the given subject id and email. Email comparison is case-insensitive.
func (u *User) SameIdentity(id, email string) bool {
	return u.ID == id && strings.EqualFold(u.Email, email)
}

func (u *User) IsStudent() bool { return u.Role == RoleStudent }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }

package model

import (
	"net/mail"
	"time"
)

// User represents an account that can report items, raise issues or administer.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Person returns the identity recorded on items and issues.
func (u *User) Person() Person {
	return Person{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin: 2,
		RoleUser:  1,
	}
	r, m := levels[role], levels[minimum]
	return r > 0 && m > 0 && r >= m
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// ValidatePassword checks a new password against the length policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return &ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}
	return nil
}

// ValidateEmail checks that email is a bare address.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &ValidationError{Field: "email", Reason: "must be a valid address"}
	}
	return nil
}

// Actor is the authenticated caller of a core operation, taken from a
// trusted session rather than from request input.
type Actor struct {
	Person
	Role string
}

// IsAdmin reports whether the actor may perform administrator operations.
func (a Actor) IsAdmin() bool {
	return RoleAtLeast(a.Role, RoleAdmin)
}

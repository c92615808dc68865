package domain

import (
	"slices"
	"strings"
	"time"
)

// Default role names seeded at startup.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is a principal. Roles are the names of the roles it holds.
type User struct {
	ID           string
	Email        string
	PasswordHash string // argon2id PHC string
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PrincipalID returns the subject used in tokens.
func (u User) PrincipalID() string { return u.ID }

// HasAnyRole reports whether the roles of u intersect allowed.
func (u User) HasAnyRole(allowed ...string) bool {
	for _, r := range allowed {
		if slices.Contains(u.Roles, r) {
			return true
		}
	}
	return false
}

// NormalizeEmail trims and lower-cases an email address. Lookups and
// inserts always go through it so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

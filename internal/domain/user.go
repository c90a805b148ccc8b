package domain

import "time"

// Role gates write and admin operations. Checks are explicit capability
// lookups, not a numeric hierarchy: developer is a superset of admin by
// convention only.
type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleDeveloper Role = "developer"
)

// ValidRole reports whether the value is one of the three known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleAdmin, RoleDeveloper:
		return true
	}
	return false
}

// Address is the optional shipping address on a user profile.
type Address struct {
	Street     string `json:"street,omitempty"`
	Number     string `json:"number,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

// User is the domain model for shoppers and staff alike; staff are users
// whose role was elevated.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Address      *Address
	Role         Role

	// Password recovery: only the SHA-256 hash of the emailed token is
	// stored, single-use, with a short expiry.
	ResetTokenHash    *string
	ResetTokenExpires *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

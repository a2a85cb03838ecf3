package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleRoot          UserRole = "ROOT"
	RoleAdministrator UserRole = "ADMINISTRATOR"
	RoleUser          UserRole = "USER"
	RoleGuest         UserRole = "GUEST"
)

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Enabled      bool       `db:"enabled" json:"enabled"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Enabled   *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

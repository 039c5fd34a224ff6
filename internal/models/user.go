package models

import "time"

// User roles.
const (
	RoleRegistered = "registered"
	RoleAdmin      = "admin"
)

// User is a marketplace account. PasswordHash never leaves the service.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Role         string    `db:"role" json:"role"`
	Name         string    `db:"name" json:"name"`
	Surname      string    `db:"surname" json:"surname"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Photo        *string   `db:"photo" json:"photo,omitempty"`
	Active       bool      `db:"active" json:"active"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}

// IsAdmin reports whether the account has the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

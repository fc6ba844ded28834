package domain

import "time"

type User struct {
	ID           string
	Email        string // stored lowercased
	DisplayName  string
	Role         Role
	PasswordHash string     // "salt:hash", see cryptox.HashPassword
	LastLoginAt  *time.Time // nil until the first successful login
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

package auth

import (
	"time"

	"github.com/amexing/amexing-ops/internal/shared"
)

// User represents an authenticated user account.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         shared.Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor converts the account into the request principal.
func (u User) Actor() shared.Actor {
	return shared.Actor{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

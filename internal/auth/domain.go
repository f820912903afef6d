package auth

import (
	"time"

	"github.com/taskdeck/taskdeck/internal/access"
)

// Credentials is the slice of an account the login flow needs.
type Credentials struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         access.Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

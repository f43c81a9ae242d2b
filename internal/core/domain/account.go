package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role controls what a platform account may do with an escrow.
type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

// Account is a platform user. The account's user id becomes the triggering
// actor recorded on every event it causes.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the account may resolve disputes and mark
// settlement failures.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

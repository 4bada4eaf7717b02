// Package models holds the persisted account record and its statistics.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Guest pseudo-account identity. Never persisted.
const (
	GuestName  = "Visitante"
	GuestEmail = "guest@patrimoniopro.local"
)

// Account is one user: identity, credentials and financial statistics.
// JSON field names follow the camelCase records of the web client.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"passwordHash,omitempty"`
	Salt         []byte    `json:"salt,omitempty"`
	Stats        UserStats `json:"stats"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewAccount returns a fresh account with zero statistics.
func NewAccount(name, email string, salt, passwordHash []byte) *Account {
	return &Account{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		Stats:        NewUserStats(),
		CreatedAt:    time.Now().UTC(),
	}
}

// GuestAccount synthesizes the guest pseudo-account.
func GuestAccount() *Account {
	return &Account{
		ID:        uuid.Nil.String(),
		Name:      GuestName,
		Email:     GuestEmail,
		Stats:     NewUserStats(),
		CreatedAt: time.Now().UTC(),
	}
}

// IsGuest reports whether a is the guest pseudo-account.
func (a *Account) IsGuest() bool {
	return a != nil && a.Email == GuestEmail
}

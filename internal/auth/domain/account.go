package domain

import "time"

type Account struct {
	ID           string
	Username     string // globally unique
	Email        string // globally unique
	PasswordHash string // argon2 encoded
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicAccount is the subset of Account safe to return over the wire.
type PublicAccount struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

func (a Account) Public() PublicAccount {
	return PublicAccount{
		ID:       a.ID,
		Username: a.Username,
		Email:    a.Email,
		IsActive: a.IsActive,
	}
}

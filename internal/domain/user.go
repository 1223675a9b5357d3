package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleFounder  Role = "founder"
	RoleInvestor Role = "investor"
	RoleAdmin    Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleFounder, RoleInvestor, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         Role
	FullName     *string
	Country      string
	CreatedAt    time.Time
}

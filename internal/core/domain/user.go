package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"_id"`
	Name         string    `json:"name" validate:"required,max=100"`
	Email        string    `json:"email" validate:"required,email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role" validate:"required,oneof=customer owner"`
	City         string    `json:"city,omitempty" validate:"max=100"`
	UPIID        string    `json:"upiId,omitempty" validate:"max=100"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserDetails holds the fields a user may change about themselves. Nil means unchanged.
type UserDetails struct {
	Name  *string
	City  *string
	UPIID *string
}

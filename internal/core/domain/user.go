package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account holder authenticated through an external
// identity provider. GoogleID is the provider's stable subject id.
type User struct {
	ID        uuid.UUID `json:"id"`
	GoogleID  string    `json:"-"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

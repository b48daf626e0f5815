package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds a single user's balance in minor units (kobo).
// Every user has exactly one wallet, created lazily on first use.
type Wallet struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	WalletNumber string    `json:"wallet_number"`
	Balance      int64     `json:"balance"`
	Currency     string    `json:"currency"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Permission is a capability an API key grants.
type Permission string

const (
	PermissionRead     Permission = "read"
	PermissionDeposit  Permission = "deposit"
	PermissionTransfer Permission = "transfer"
)

// ValidPermission reports whether p is one of the known permissions.
func ValidPermission(p string) bool {
	switch Permission(p) {
	case PermissionRead, PermissionDeposit, PermissionTransfer:
		return true
	}
	return false
}

// APIKey is a long-lived programmatic credential. Only the bcrypt hash
// of the secret is stored; the plaintext is shown once at issue time.
type APIKey struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	KeyHash     string    `json:"-"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions"`
	IsActive    bool      `json:"is_active"`
	IsRevoked   bool      `json:"is_revoked"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsUsable reports whether the key may authenticate a request at t.
// Revocation is terminal; expiry is checked against the stored instant.
func (k *APIKey) IsUsable(t time.Time) bool {
	return k.IsActive && !k.IsRevoked && t.Before(k.ExpiresAt)
}

// HasPermission reports whether the key carries the named permission.
func (k *APIKey) HasPermission(p Permission) bool {
	for _, have := range k.Permissions {
		if Permission(have) == p {
			return true
		}
	}
	return false
}

package ports

import (
	"context"
	"time"

	"wallet-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TokenService handles session token operations.
type TokenService interface {
	Generate(userID uuid.UUID, email string) (string, time.Time, error)
	Validate(tokenString string) (*SessionClaims, error)
}

// SessionClaims holds the parsed session token claims.
type SessionClaims struct {
	UserID uuid.UUID
	Email  string
}

// HashService handles one-way hashing of API key secrets (bcrypt).
type HashService interface {
	Hash(secret string) (string, error)
	Verify(secret string, hash string) (bool, error)
}

// SignatureVerifier authenticates inbound gateway webhooks.
type SignatureVerifier interface {
	// Verify checks the hex HMAC signature over the raw request body.
	Verify(body []byte, signature string) bool
}

// GatewayClient is the outbound payment gateway API.
type GatewayClient interface {
	// Initialize starts a hosted checkout and returns the redirect URL.
	Initialize(ctx context.Context, email string, amount int64, reference string) (string, error)
	// VerifyTransaction fetches the gateway's view of a charge.
	VerifyTransaction(ctx context.Context, reference string) (string, error)
}

// Identity is what the external provider asserts about a person.
type Identity struct {
	SubjectID string
	Email     string
	Name      string
}

// IdentityProvider is the OAuth identity provider boundary.
type IdentityProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*Identity, error)
}

// AuthKind tells a handler which credential authenticated the request.
type AuthKind string

const (
	AuthKindSession AuthKind = "session"
	AuthKindAPIKey  AuthKind = "api_key"
)

// --- Service Ports (Business Logic) ---

// AuthService resolves request credentials and handles identity login.
type AuthService interface {
	// Resolve authenticates exactly one of sessionToken / apiKey and,
	// for API keys, enforces requiredPermission ("" skips the check).
	Resolve(ctx context.Context, sessionToken, apiKey string, requiredPermission domain.Permission) (*domain.User, AuthKind, error)
	// LoginWithIdentity finds or creates the user asserted by the
	// provider and issues a session token.
	LoginWithIdentity(ctx context.Context, identity *Identity) (string, time.Time, *domain.User, error)
}

// APIKeyService manages programmatic credentials.
type APIKeyService interface {
	// Issue creates a key and returns the plaintext secret exactly once.
	Issue(ctx context.Context, userID uuid.UUID, name string, permissions []string, expirySpec string) (string, *domain.APIKey, error)
	// Rollover re-issues an expired key with fresh expiry, revoking the old one.
	Rollover(ctx context.Context, userID, keyID uuid.UUID, expirySpec string) (string, *domain.APIKey, error)
	Revoke(ctx context.Context, userID, keyID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]domain.APIKey, error)
}

// LedgerService owns every balance mutation except webhook crediting.
type LedgerService interface {
	GetOrCreateWallet(ctx context.Context, user *domain.User) (*domain.Wallet, error)
	InitiateDeposit(ctx context.Context, user *domain.User, amount int64) (*DepositIntent, error)
	GetDepositStatus(ctx context.Context, user *domain.User, reference string) (*domain.Transaction, error)
	TransferFunds(ctx context.Context, sender *domain.User, recipientWalletNumber string, amount int64) (*domain.Transaction, error)
	// CreditWallet applies a pending deposit inside the caller's
	// transaction: lock wallet, add amount, flip status to success.
	CreditWallet(ctx context.Context, tx pgx.Tx, transactionID uuid.UUID) (*domain.Transaction, error)
	GetTransactionHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// DepositIntent is the result of starting a hosted checkout.
type DepositIntent struct {
	Reference   string
	RedirectURL string
	Transaction *domain.Transaction
}

// WebhookReconciler applies gateway events to the ledger idempotently.
type WebhookReconciler interface {
	// HandleEvent processes one delivery. A nil return means the
	// delivery may be acknowledged; business-level anomalies (unknown
	// reference, amount mismatch) are absorbed, not returned.
	HandleEvent(ctx context.Context, event, status, reference string, paidAmount int64, payload []byte) error
}

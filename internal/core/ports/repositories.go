package ports

import (
	"context"
	"time"

	"wallet-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error)
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	GetByNumber(ctx context.Context, walletNumber string) (*domain.Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64) error
	DeleteByUserID(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error
}

// TransactionRepository defines persistence operations for ledger entries.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetByReference(ctx context.Context, reference string) (*domain.Transaction, error)
	// GetByReferenceForUpdate locks the row for the rest of the database
	// transaction so status checks and updates see a stable state.
	GetByReferenceForUpdate(ctx context.Context, tx pgx.Tx, reference string) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error)
	DeleteByUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error
}

// APIKeyRepository defines persistence operations for API keys.
type APIKeyRepository interface {
	Create(ctx context.Context, tx pgx.Tx, key *domain.APIKey) error
	GetByID(ctx context.Context, userID, keyID uuid.UUID) (*domain.APIKey, error)
	// ListActive returns every active, non-revoked key across all users.
	// The auth resolver scans these verifying the presented secret.
	ListActive(ctx context.Context) ([]domain.APIKey, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.APIKey, error)
	// CountUsable counts keys that are active, not revoked, and not yet
	// expired at the given instant. Used for the per-user issue limit.
	CountUsable(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)
	Revoke(ctx context.Context, tx pgx.Tx, keyID uuid.UUID) error
	DeleteByUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error
}

// WebhookLogRepository defines persistence for gateway delivery logs.
type WebhookLogRepository interface {
	// GetOrCreate inserts a log for (event, reference) or returns the
	// existing one when a concurrent delivery already inserted it.
	GetOrCreate(ctx context.Context, tx pgx.Tx, log *domain.WebhookLog) (*domain.WebhookLog, error)
	GetByEventReference(ctx context.Context, event, reference string) (*domain.WebhookLog, error)
	MarkProcessed(ctx context.Context, tx pgx.Tx, id uuid.UUID, transactionID *uuid.UUID) error
	ClearTransactionLinks(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error
}

// WebhookCache is the Redis fast path for webhook deduplication.
// Entries are written only after the processed flag has committed.
type WebhookCache interface {
	IsProcessed(ctx context.Context, event, reference string) (bool, error)
	MarkProcessed(ctx context.Context, event, reference string) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

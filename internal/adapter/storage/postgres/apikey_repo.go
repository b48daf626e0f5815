package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// APIKeyRepo implements ports.APIKeyRepository.
type APIKeyRepo struct {
	pool Pool
}

// NewAPIKeyRepo creates a new APIKeyRepo.
func NewAPIKeyRepo(pool Pool) *APIKeyRepo {
	return &APIKeyRepo{pool: pool}
}

const apiKeyColumns = `id, user_id, key_hash, name, permissions, is_active, is_revoked,
	expires_at, created_at, updated_at`

// Create inserts a new API key within a database transaction.
func (r *APIKeyRepo) Create(ctx context.Context, tx pgx.Tx, k *domain.APIKey) error {
	query := `INSERT INTO api_keys (id, user_id, key_hash, name, permissions, is_active, is_revoked,
		expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := tx.Exec(ctx, query,
		k.ID, k.UserID, k.KeyHash, k.Name, k.Permissions,
		k.IsActive, k.IsRevoked, k.ExpiresAt, k.CreatedAt, k.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}
	return nil
}

// GetByID fetches a key scoped to its owner.
func (r *APIKeyRepo) GetByID(ctx context.Context, userID, keyID uuid.UUID) (*domain.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE id = $1 AND user_id = $2`

	k := &domain.APIKey{}
	err := r.pool.QueryRow(ctx, query, keyID, userID).Scan(
		&k.ID, &k.UserID, &k.KeyHash, &k.Name, &k.Permissions,
		&k.IsActive, &k.IsRevoked, &k.ExpiresAt, &k.CreatedAt, &k.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get api key: %w", err)
	}
	return k, nil
}

// ListActive returns every active, non-revoked key across all users.
// Expiry is checked by the caller so an expired match can be told apart
// from no match at all.
func (r *APIKeyRepo) ListActive(ctx context.Context) ([]domain.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys
		WHERE is_active = TRUE AND is_revoked = FALSE`

	return r.queryKeys(ctx, query)
}

// ListByUser returns all of a user's keys, newest first.
func (r *APIKeyRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys
		WHERE user_id = $1 ORDER BY created_at DESC`

	return r.queryKeys(ctx, query, userID)
}

// CountUsable counts a user's keys that could authenticate a request at
// the given instant.
func (r *APIKeyRepo) CountUsable(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM api_keys
		WHERE user_id = $1 AND is_active = TRUE AND is_revoked = FALSE AND expires_at > $2`

	var count int
	err := r.pool.QueryRow(ctx, query, userID, now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count usable api keys: %w", err)
	}
	return count, nil
}

// Revoke marks a key revoked and inactive within a database transaction.
// Revoking an already-revoked key is a no-op.
func (r *APIKeyRepo) Revoke(ctx context.Context, tx pgx.Tx, keyID uuid.UUID) error {
	query := `UPDATE api_keys SET is_revoked = TRUE, is_active = FALSE, updated_at = NOW()
		WHERE id = $1`

	_, err := tx.Exec(ctx, query, keyID)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	return nil
}

// DeleteByUser removes a user's keys within a database transaction.
func (r *APIKeyRepo) DeleteByUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM api_keys WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete api keys: %w", err)
	}
	return nil
}

func (r *APIKeyRepo) queryKeys(ctx context.Context, query string, args ...any) ([]domain.APIKey, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query api keys: %w", err)
	}
	defer rows.Close()

	var keys []domain.APIKey
	for rows.Next() {
		k := domain.APIKey{}
		err := rows.Scan(
			&k.ID, &k.UserID, &k.KeyHash, &k.Name, &k.Permissions,
			&k.IsActive, &k.IsRevoked, &k.ExpiresAt, &k.CreatedAt, &k.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan api key row: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate api key rows: %w", err)
	}
	return keys, nil
}

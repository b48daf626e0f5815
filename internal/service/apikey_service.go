package service

import (
	"context"
	"fmt"
	"time"

	"wallet-service/internal/core/domain"
	"wallet-service/internal/core/ports"
	"wallet-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// APIKeyServiceImpl implements ports.APIKeyService.
type APIKeyServiceImpl struct {
	apiKeyRepo ports.APIKeyRepository
	hashSvc    ports.HashService
	transactor ports.DBTransactor
	maxActive  int
	log        zerolog.Logger
}

// NewAPIKeyService creates a new APIKeyServiceImpl.
func NewAPIKeyService(
	apiKeyRepo ports.APIKeyRepository,
	hashSvc ports.HashService,
	transactor ports.DBTransactor,
	maxActive int,
	log zerolog.Logger,
) *APIKeyServiceImpl {
	return &APIKeyServiceImpl{
		apiKeyRepo: apiKeyRepo,
		hashSvc:    hashSvc,
		transactor: transactor,
		maxActive:  maxActive,
		log:        log,
	}
}

// Issue creates a new API key for the user. The plaintext secret is
// returned exactly once and never stored.
func (s *APIKeyServiceImpl) Issue(ctx context.Context, userID uuid.UUID, name string, permissions []string, expirySpec string) (string, *domain.APIKey, error) {
	if name == "" {
		return "", nil, apperror.Validation("key name is required")
	}
	if len(permissions) == 0 {
		return "", nil, apperror.Validation("at least one permission is required")
	}
	for _, p := range permissions {
		if !domain.ValidPermission(p) {
			return "", nil, apperror.Validation(fmt.Sprintf("unknown permission %q", p))
		}
	}

	lifetime, err := ParseExpirySpec(expirySpec)
	if err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	usable, err := s.apiKeyRepo.CountUsable(ctx, userID, now)
	if err != nil {
		return "", nil, apperror.InternalError(fmt.Errorf("count usable keys: %w", err))
	}
	if usable >= s.maxActive {
		return "", nil, apperror.ErrAPIKeyLimitExceeded(s.maxActive)
	}

	secret, err := GenerateAPIKey()
	if err != nil {
		return "", nil, apperror.InternalError(fmt.Errorf("generate key: %w", err))
	}
	hash, err := s.hashSvc.Hash(secret)
	if err != nil {
		return "", nil, apperror.InternalError(fmt.Errorf("hash key: %w", err))
	}

	key := &domain.APIKey{
		ID:          uuid.New(),
		UserID:      userID,
		KeyHash:     hash,
		Name:        name,
		Permissions: permissions,
		IsActive:    true,
		IsRevoked:   false,
		ExpiresAt:   now.Add(lifetime),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return "", nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.apiKeyRepo.Create(ctx, dbTx, key); err != nil {
		return "", nil, apperror.InternalError(fmt.Errorf("create key: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return "", nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("key_id", key.ID.String()).
		Str("user_id", userID.String()).
		Time("expires_at", key.ExpiresAt).
		Msg("api key issued")

	return secret, key, nil
}

// Rollover re-issues an expired key under a fresh secret and expiry,
// revoking the old key in the same transaction. A key that has not
// expired yet cannot be rolled over.
func (s *APIKeyServiceImpl) Rollover(ctx context.Context, userID, keyID uuid.UUID, expirySpec string) (string, *domain.APIKey, error) {
	lifetime, err := ParseExpirySpec(expirySpec)
	if err != nil {
		return "", nil, err
	}

	old, err := s.apiKeyRepo.GetByID(ctx, userID, keyID)
	if err != nil {
		return "", nil, apperror.InternalError(fmt.Errorf("load key: %w", err))
	}
	if old == nil {
		return "", nil, apperror.ErrAPIKeyNotFound()
	}

	now := time.Now().UTC()
	if now.Before(old.ExpiresAt) {
		return "", nil, apperror.ErrKeyNotYetExpired()
	}

	secret, err := GenerateAPIKey()
	if err != nil {
		return "", nil, apperror.InternalError(fmt.Errorf("generate key: %w", err))
	}
	hash, err := s.hashSvc.Hash(secret)
	if err != nil {
		return "", nil, apperror.InternalError(fmt.Errorf("hash key: %w", err))
	}

	replacement := &domain.APIKey{
		ID:          uuid.New(),
		UserID:      userID,
		KeyHash:     hash,
		Name:        old.Name,
		Permissions: old.Permissions,
		IsActive:    true,
		IsRevoked:   false,
		ExpiresAt:   now.Add(lifetime),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return "", nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.apiKeyRepo.Revoke(ctx, dbTx, old.ID); err != nil {
		return "", nil, apperror.InternalError(fmt.Errorf("revoke old key: %w", err))
	}
	if err := s.apiKeyRepo.Create(ctx, dbTx, replacement); err != nil {
		return "", nil, apperror.InternalError(fmt.Errorf("create replacement key: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return "", nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("old_key_id", old.ID.String()).
		Str("new_key_id", replacement.ID.String()).
		Str("user_id", userID.String()).
		Msg("api key rolled over")

	return secret, replacement, nil
}

// Revoke deactivates a key. Revoking an already revoked key succeeds.
func (s *APIKeyServiceImpl) Revoke(ctx context.Context, userID, keyID uuid.UUID) error {
	key, err := s.apiKeyRepo.GetByID(ctx, userID, keyID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("load key: %w", err))
	}
	if key == nil {
		return apperror.ErrAPIKeyNotFound()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.apiKeyRepo.Revoke(ctx, dbTx, keyID); err != nil {
		return apperror.InternalError(fmt.Errorf("revoke key: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("key_id", keyID.String()).
		Str("user_id", userID.String()).
		Msg("api key revoked")

	return nil
}

// List returns all of the user's keys, newest first.
func (s *APIKeyServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]domain.APIKey, error) {
	keys, err := s.apiKeyRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list keys: %w", err))
	}
	return keys, nil
}

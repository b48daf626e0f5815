package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wallet-service/internal/core/domain"
	"wallet-service/internal/core/ports"
	"wallet-service/pkg/apperror"

	"github.com/google/uuid"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	userRepo   ports.UserRepository
	apiKeyRepo ports.APIKeyRepository
	hashSvc    ports.HashService
	tokenSvc   ports.TokenService
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	userRepo ports.UserRepository,
	apiKeyRepo ports.APIKeyRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo:   userRepo,
		apiKeyRepo: apiKeyRepo,
		hashSvc:    hashSvc,
		tokenSvc:   tokenSvc,
	}
}

// Resolve authenticates a request from exactly one credential. A session
// token takes precedence when both are presented.
func (s *AuthServiceImpl) Resolve(ctx context.Context, sessionToken, apiKey string, requiredPermission domain.Permission) (*domain.User, ports.AuthKind, error) {
	switch {
	case sessionToken != "":
		user, err := s.resolveSession(ctx, sessionToken)
		if err != nil {
			return nil, "", err
		}
		return user, ports.AuthKindSession, nil
	case apiKey != "":
		user, err := s.resolveAPIKey(ctx, apiKey, requiredPermission)
		if err != nil {
			return nil, "", err
		}
		return user, ports.AuthKindAPIKey, nil
	default:
		return nil, "", apperror.ErrMissingCredential()
	}
}

func (s *AuthServiceImpl) resolveSession(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokenSvc.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load session user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrUserNotFound()
	}
	return user, nil
}

// resolveAPIKey scans active keys verifying the presented secret against
// each stored hash. Secrets are stored hashed, so there is no direct
// lookup column. An expired match is reported the same way as no match.
func (s *AuthServiceImpl) resolveAPIKey(ctx context.Context, secret string, requiredPermission domain.Permission) (*domain.User, error) {
	if !strings.HasPrefix(secret, apiKeyPrefix) {
		return nil, apperror.ErrInvalidCredential()
	}

	keys, err := s.apiKeyRepo.ListActive(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list active keys: %w", err))
	}

	now := time.Now()
	for i := range keys {
		key := &keys[i]
		match, err := s.hashSvc.Verify(secret, key.KeyHash)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("verify key hash: %w", err))
		}
		if !match {
			continue
		}

		if !key.IsUsable(now) {
			return nil, apperror.ErrInvalidCredential()
		}

		if requiredPermission != "" && !key.HasPermission(requiredPermission) {
			return nil, apperror.ErrMissingPermission(string(requiredPermission))
		}

		user, err := s.userRepo.GetByID(ctx, key.UserID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("load key owner: %w", err))
		}
		if user == nil {
			return nil, apperror.ErrUserNotFound()
		}
		return user, nil
	}

	return nil, apperror.ErrInvalidCredential()
}

// LoginWithIdentity finds or creates the user asserted by the identity
// provider and issues a session token.
func (s *AuthServiceImpl) LoginWithIdentity(ctx context.Context, identity *ports.Identity) (string, time.Time, *domain.User, error) {
	user, err := s.userRepo.GetByGoogleID(ctx, identity.SubjectID)
	if err != nil {
		return "", time.Time{}, nil, apperror.InternalError(fmt.Errorf("find user by provider id: %w", err))
	}

	if user == nil {
		now := time.Now().UTC()
		user = &domain.User{
			ID:        uuid.New(),
			GoogleID:  identity.SubjectID,
			Email:     identity.Email,
			Name:      identity.Name,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return "", time.Time{}, nil, apperror.InternalError(fmt.Errorf("create user: %w", err))
		}
	}

	token, expiry, err := s.tokenSvc.Generate(user.ID, user.Email)
	if err != nil {
		return "", time.Time{}, nil, apperror.InternalError(fmt.Errorf("generate session token: %w", err))
	}

	return token, expiry, user, nil
}

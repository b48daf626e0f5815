package postgres

import (
	"context"
	"testing"
	"time"

	"wallet-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPIKey(userID uuid.UUID) *domain.APIKey {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.APIKey{
		ID:          uuid.New(),
		UserID:      userID,
		KeyHash:     "$2a$10$abcdefghijklmnopqrstuv",
		Name:        "ci-pipeline",
		Permissions: []string{"read", "deposit"},
		IsActive:    true,
		IsRevoked:   false,
		ExpiresAt:   now.Add(24 * time.Hour),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func apiKeyCols() []string {
	return []string{"id", "user_id", "key_hash", "name", "permissions", "is_active", "is_revoked",
		"expires_at", "created_at", "updated_at"}
}

func apiKeyRow(k *domain.APIKey) *pgxmock.Rows {
	return pgxmock.NewRows(apiKeyCols()).AddRow(
		k.ID, k.UserID, k.KeyHash, k.Name, k.Permissions,
		k.IsActive, k.IsRevoked, k.ExpiresAt, k.CreatedAt, k.UpdatedAt,
	)
}

func TestAPIKeyRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAPIKeyRepo(mock)
	k := newTestAPIKey(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO api_keys").
		WithArgs(k.ID, k.UserID, k.KeyHash, k.Name, k.Permissions,
			k.IsActive, k.IsRevoked, k.ExpiresAt, k.CreatedAt, k.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, k)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAPIKeyRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAPIKeyRepo(mock)
	k := newTestAPIKey(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM api_keys WHERE id").
		WithArgs(k.ID, k.UserID).
		WillReturnRows(apiKeyRow(k))

	result, err := repo.GetByID(context.Background(), k.UserID, k.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, k.Name, result.Name)
	assert.Equal(t, k.Permissions, result.Permissions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAPIKeyRepo_GetByID_WrongOwner(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAPIKeyRepo(mock)
	keyID := uuid.New()
	otherUser := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM api_keys WHERE id").
		WithArgs(keyID, otherUser).
		WillReturnRows(pgxmock.NewRows(apiKeyCols()))

	result, err := repo.GetByID(context.Background(), otherUser, keyID)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAPIKeyRepo_ListActive(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAPIKeyRepo(mock)
	first := newTestAPIKey(uuid.New())
	second := newTestAPIKey(uuid.New())

	rows := pgxmock.NewRows(apiKeyCols()).
		AddRow(first.ID, first.UserID, first.KeyHash, first.Name, first.Permissions,
			first.IsActive, first.IsRevoked, first.ExpiresAt, first.CreatedAt, first.UpdatedAt).
		AddRow(second.ID, second.UserID, second.KeyHash, second.Name, second.Permissions,
			second.IsActive, second.IsRevoked, second.ExpiresAt, second.CreatedAt, second.UpdatedAt)

	mock.ExpectQuery("SELECT .+ FROM api_keys").
		WillReturnRows(rows)

	keys, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, keys, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAPIKeyRepo_ListByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAPIKeyRepo(mock)
	k := newTestAPIKey(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM api_keys .+ ORDER BY created_at DESC").
		WithArgs(k.UserID).
		WillReturnRows(apiKeyRow(k))

	keys, err := repo.ListByUser(context.Background(), k.UserID)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, k.ID, keys[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAPIKeyRepo_CountUsable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAPIKeyRepo(mock)
	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("SELECT COUNT.+ FROM api_keys").
		WithArgs(userID, now).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountUsable(context.Background(), userID, now)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAPIKeyRepo_Revoke(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAPIKeyRepo(mock)
	keyID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE api_keys SET is_revoked").
		WithArgs(keyID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Revoke(context.Background(), tx, keyID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAPIKeyRepo_DeleteByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAPIKeyRepo(mock)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM api_keys WHERE user_id").
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.DeleteByUser(context.Background(), tx, userID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

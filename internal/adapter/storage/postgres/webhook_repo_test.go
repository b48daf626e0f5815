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

func newTestWebhookLog() *domain.WebhookLog {
	return &domain.WebhookLog{
		ID:        uuid.New(),
		Event:     domain.WebhookEventChargeSuccess,
		Reference: "paystack_a1b2c3d4e5f6",
		Payload:   []byte(`{"event":"charge.success"}`),
		Processed: false,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func webhookLogCols() []string {
	return []string{"id", "event", "reference", "payload", "processed", "transaction_id", "created_at"}
}

func TestWebhookLogRepo_GetOrCreate_Inserts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookLogRepo(mock)
	log := newTestWebhookLog()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO webhook_logs").
		WithArgs(log.ID, log.Event, log.Reference, log.Payload,
			log.Processed, log.TransactionID, log.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetOrCreate(context.Background(), tx, log)
	require.NoError(t, err)
	assert.Equal(t, log.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookLogRepo_GetOrCreate_ConflictReturnsExisting(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookLogRepo(mock)
	log := newTestWebhookLog()

	existing := newTestWebhookLog()
	existing.Event = log.Event
	existing.Reference = log.Reference
	existing.Processed = true

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO webhook_logs").
		WithArgs(log.ID, log.Event, log.Reference, log.Payload,
			log.Processed, log.TransactionID, log.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("SELECT .+ FROM webhook_logs").
		WithArgs(log.Event, log.Reference).
		WillReturnRows(pgxmock.NewRows(webhookLogCols()).AddRow(
			existing.ID, existing.Event, existing.Reference, existing.Payload,
			existing.Processed, existing.TransactionID, existing.CreatedAt,
		))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetOrCreate(context.Background(), tx, log)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, result.ID)
	assert.True(t, result.Processed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookLogRepo_GetByEventReference(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookLogRepo(mock)
	log := newTestWebhookLog()

	mock.ExpectQuery("SELECT .+ FROM webhook_logs").
		WithArgs(log.Event, log.Reference).
		WillReturnRows(pgxmock.NewRows(webhookLogCols()).AddRow(
			log.ID, log.Event, log.Reference, log.Payload,
			log.Processed, log.TransactionID, log.CreatedAt,
		))

	result, err := repo.GetByEventReference(context.Background(), log.Event, log.Reference)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, log.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookLogRepo_GetByEventReference_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookLogRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM webhook_logs").
		WithArgs("charge.success", "paystack_missing0000").
		WillReturnRows(pgxmock.NewRows(webhookLogCols()))

	result, err := repo.GetByEventReference(context.Background(), "charge.success", "paystack_missing0000")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookLogRepo_MarkProcessed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookLogRepo(mock)
	logID := uuid.New()
	txnID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE webhook_logs SET processed").
		WithArgs(&txnID, logID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.MarkProcessed(context.Background(), tx, logID, &txnID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookLogRepo_MarkProcessed_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookLogRepo(mock)
	logID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE webhook_logs SET processed").
		WithArgs(pgxmock.AnyArg(), logID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	var noTxn *uuid.UUID
	err = repo.MarkProcessed(context.Background(), tx, logID, noTxn)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "webhook log not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookLogRepo_ClearTransactionLinks(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookLogRepo(mock)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE webhook_logs SET transaction_id").
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.ClearTransactionLinks(context.Background(), tx, userID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

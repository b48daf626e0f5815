package postgres

import (
	"context"
	"errors"
	"fmt"

	"wallet-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WebhookLogRepo implements ports.WebhookLogRepository.
type WebhookLogRepo struct {
	pool Pool
}

// NewWebhookLogRepo creates a new WebhookLogRepo.
func NewWebhookLogRepo(pool Pool) *WebhookLogRepo {
	return &WebhookLogRepo{pool: pool}
}

const webhookLogColumns = `id, event, reference, payload, processed, transaction_id, created_at`

// GetOrCreate inserts a log row for (event, reference), relying on the
// unique constraint to collapse concurrent deliveries. When another
// delivery won the insert race this re-reads and returns that row.
func (r *WebhookLogRepo) GetOrCreate(ctx context.Context, tx pgx.Tx, log *domain.WebhookLog) (*domain.WebhookLog, error) {
	insert := `INSERT INTO webhook_logs (id, event, reference, payload, processed, transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event, reference) DO NOTHING`

	tag, err := tx.Exec(ctx, insert,
		log.ID, log.Event, log.Reference, log.Payload,
		log.Processed, log.TransactionID, log.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert webhook log: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return log, nil
	}

	query := `SELECT ` + webhookLogColumns + ` FROM webhook_logs
		WHERE event = $1 AND reference = $2`

	existing, err := r.scanLog(tx.QueryRow(ctx, query, log.Event, log.Reference))
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("webhook log vanished after conflict: %s/%s", log.Event, log.Reference)
	}
	return existing, nil
}

// GetByEventReference fetches a log by its natural key (non-locking read).
func (r *WebhookLogRepo) GetByEventReference(ctx context.Context, event, reference string) (*domain.WebhookLog, error) {
	query := `SELECT ` + webhookLogColumns + ` FROM webhook_logs
		WHERE event = $1 AND reference = $2`

	return r.scanLog(r.pool.QueryRow(ctx, query, event, reference))
}

// MarkProcessed terminally flags a log, optionally linking the ledger
// entry it settled. Runs within the caller's transaction.
func (r *WebhookLogRepo) MarkProcessed(ctx context.Context, tx pgx.Tx, id uuid.UUID, transactionID *uuid.UUID) error {
	query := `UPDATE webhook_logs SET processed = TRUE, transaction_id = COALESCE($1, transaction_id)
		WHERE id = $2`

	tag, err := tx.Exec(ctx, query, transactionID, id)
	if err != nil {
		return fmt.Errorf("mark webhook processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("webhook log not found: %s", id)
	}
	return nil
}

// ClearTransactionLinks detaches webhook logs from a user's transactions
// so the transactions can be deleted. The logs themselves stay.
func (r *WebhookLogRepo) ClearTransactionLinks(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	query := `UPDATE webhook_logs SET transaction_id = NULL
		WHERE transaction_id IN (SELECT id FROM transactions WHERE user_id = $1)`

	_, err := tx.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("clear webhook transaction links: %w", err)
	}
	return nil
}

func (r *WebhookLogRepo) scanLog(row pgx.Row) (*domain.WebhookLog, error) {
	l := &domain.WebhookLog{}
	err := row.Scan(
		&l.ID, &l.Event, &l.Reference, &l.Payload,
		&l.Processed, &l.TransactionID, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan webhook log: %w", err)
	}
	return l, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"wallet-service/internal/core/domain"
	"wallet-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// WebhookReconcilerImpl implements ports.WebhookReconciler. It applies
// gateway deliveries to the ledger exactly once: Redis answers the common
// retry quickly, the unique (event, reference) log row is the source of
// truth under concurrency.
type WebhookReconcilerImpl struct {
	webhookRepo ports.WebhookLogRepository
	txRepo      ports.TransactionRepository
	ledger      ports.LedgerService
	cache       ports.WebhookCache
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewWebhookReconciler creates a new WebhookReconcilerImpl.
func NewWebhookReconciler(
	webhookRepo ports.WebhookLogRepository,
	txRepo ports.TransactionRepository,
	ledger ports.LedgerService,
	cache ports.WebhookCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WebhookReconcilerImpl {
	return &WebhookReconcilerImpl{
		webhookRepo: webhookRepo,
		txRepo:      txRepo,
		ledger:      ledger,
		cache:       cache,
		transactor:  transactor,
		log:         log,
	}
}

// HandleEvent processes one gateway delivery. Redeliveries of a settled
// (event, reference) pair are acknowledged without touching the ledger.
// Business anomalies (unknown reference, amount mismatch) are logged and
// absorbed so the gateway stops retrying; only infrastructure failures
// surface as errors.
func (s *WebhookReconcilerImpl) HandleEvent(ctx context.Context, event, status, reference string, paidAmount int64, payload []byte) error {
	processed, err := s.cache.IsProcessed(ctx, event, reference)
	if err != nil {
		s.log.Warn().Err(err).
			Str("event", event).
			Str("reference", reference).
			Msg("redis webhook check failed, falling through to DB")
	}
	if processed {
		return nil
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	logRow, err := s.webhookRepo.GetOrCreate(ctx, dbTx, &domain.WebhookLog{
		ID:        uuid.New(),
		Event:     event,
		Reference: reference,
		Payload:   payload,
		Processed: false,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("get or create webhook log: %w", err)
	}

	if logRow.Processed {
		if err := dbTx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		s.cacheProcessed(ctx, event, reference)
		return nil
	}

	var linkedTx *uuid.UUID
	switch event {
	case domain.WebhookEventChargeSuccess:
		linkedTx, err = s.applyChargeSuccess(ctx, dbTx, status, reference, paidAmount)
	case domain.WebhookEventChargeFailed:
		linkedTx, err = s.applyChargeFailed(ctx, dbTx, reference)
	case domain.WebhookEventChargePending:
		linkedTx, err = s.applyChargePending(ctx, dbTx, reference)
	default:
		s.log.Info().
			Str("event", event).
			Str("reference", reference).
			Msg("unhandled webhook event recorded")
	}
	if err != nil {
		return err
	}

	if err := s.webhookRepo.MarkProcessed(ctx, dbTx, logRow.ID, linkedTx); err != nil {
		return fmt.Errorf("mark webhook processed: %w", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	s.cacheProcessed(ctx, event, reference)
	return nil
}

// applyChargeSuccess credits the pending deposit named by reference.
// Returns the transaction to link on the log row, nil when the charge
// could not be matched to a local deposit.
func (s *WebhookReconcilerImpl) applyChargeSuccess(ctx context.Context, dbTx pgx.Tx, status, reference string, paidAmount int64) (*uuid.UUID, error) {
	if status != string(domain.TransactionStatusSuccess) {
		s.log.Warn().
			Str("reference", reference).
			Str("status", status).
			Msg("charge.success with non-success data status, not crediting")
		return nil, nil
	}

	txn, err := s.txRepo.GetByReferenceForUpdate(ctx, dbTx, reference)
	if err != nil {
		return nil, fmt.Errorf("load transaction: %w", err)
	}
	if txn == nil {
		s.log.Error().
			Str("reference", reference).
			Msg("charge.success for unknown reference, recording without credit")
		return nil, nil
	}

	if txn.IsTerminal() {
		// A verification path or earlier delivery settled it already.
		return &txn.ID, nil
	}

	if paidAmount != txn.Amount {
		s.log.Warn().
			Str("reference", reference).
			Int64("expected", txn.Amount).
			Int64("paid", paidAmount).
			Msg("webhook amount differs from initiated amount")
	}

	credited, err := s.ledger.CreditWallet(ctx, dbTx, txn.ID)
	if err != nil {
		return nil, fmt.Errorf("credit wallet: %w", err)
	}

	s.log.Info().
		Str("reference", reference).
		Str("tx_id", credited.ID.String()).
		Int64("amount", credited.Amount).
		Msg("deposit credited from webhook")

	return &credited.ID, nil
}

// applyChargePending records the gateway's in-flight state. A deposit an
// earlier charge.failed closed is reopened so the charge.success the
// gateway sends once the retry clears can still credit it. A settled
// deposit is left alone.
func (s *WebhookReconcilerImpl) applyChargePending(ctx context.Context, dbTx pgx.Tx, reference string) (*uuid.UUID, error) {
	txn, err := s.txRepo.GetByReferenceForUpdate(ctx, dbTx, reference)
	if err != nil {
		return nil, fmt.Errorf("load transaction: %w", err)
	}
	if txn == nil {
		s.log.Warn().
			Str("reference", reference).
			Msg("charge.pending for unknown reference")
		return nil, nil
	}

	if txn.Status == domain.TransactionStatusFailed {
		if err := s.txRepo.UpdateStatus(ctx, dbTx, txn.ID, domain.TransactionStatusPending); err != nil {
			return nil, fmt.Errorf("reopen transaction: %w", err)
		}
		s.log.Info().
			Str("reference", reference).
			Str("tx_id", txn.ID.String()).
			Msg("deposit reopened as pending from webhook")
	}

	return &txn.ID, nil
}

// applyChargeFailed flips a pending deposit to failed.
func (s *WebhookReconcilerImpl) applyChargeFailed(ctx context.Context, dbTx pgx.Tx, reference string) (*uuid.UUID, error) {
	txn, err := s.txRepo.GetByReferenceForUpdate(ctx, dbTx, reference)
	if err != nil {
		return nil, fmt.Errorf("load transaction: %w", err)
	}
	if txn == nil {
		s.log.Warn().
			Str("reference", reference).
			Msg("charge.failed for unknown reference")
		return nil, nil
	}

	if !txn.IsTerminal() {
		if err := s.txRepo.UpdateStatus(ctx, dbTx, txn.ID, domain.TransactionStatusFailed); err != nil {
			return nil, fmt.Errorf("fail transaction: %w", err)
		}
		s.log.Info().
			Str("reference", reference).
			Str("tx_id", txn.ID.String()).
			Msg("deposit marked failed from webhook")
	}

	return &txn.ID, nil
}

// cacheProcessed records the settled delivery in Redis, best-effort.
func (s *WebhookReconcilerImpl) cacheProcessed(ctx context.Context, event, reference string) {
	if err := s.cache.MarkProcessed(ctx, event, reference); err != nil {
		s.log.Warn().Err(err).
			Str("event", event).
			Str("reference", reference).
			Msg("failed to cache processed webhook")
	}
}

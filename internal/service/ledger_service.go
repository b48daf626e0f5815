package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"wallet-service/internal/core/domain"
	"wallet-service/internal/core/ports"
	"wallet-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

const (
	defaultCurrency     = "NGN"
	walletNumberDigits  = 13
	maxHistoryPageSize  = 100
	defaultHistoryLimit = 20
)

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	userRepo    ports.UserRepository
	walletRepo  ports.WalletRepository
	txRepo      ports.TransactionRepository
	apiKeyRepo  ports.APIKeyRepository
	webhookRepo ports.WebhookLogRepository
	gateway     ports.GatewayClient
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	userRepo ports.UserRepository,
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	apiKeyRepo ports.APIKeyRepository,
	webhookRepo ports.WebhookLogRepository,
	gateway ports.GatewayClient,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		userRepo:    userRepo,
		walletRepo:  walletRepo,
		txRepo:      txRepo,
		apiKeyRepo:  apiKeyRepo,
		webhookRepo: webhookRepo,
		gateway:     gateway,
		transactor:  transactor,
		log:         log,
	}
}

// GetOrCreateWallet returns the user's wallet, creating it on first use.
// A concurrent create losing the unique race falls back to the winner's row.
func (s *LedgerServiceImpl) GetOrCreateWallet(ctx context.Context, user *domain.User) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load wallet: %w", err))
	}
	if wallet != nil {
		return wallet, nil
	}

	number, err := generateWalletNumber()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate wallet number: %w", err))
	}

	now := time.Now().UTC()
	wallet = &domain.Wallet{
		ID:           uuid.New(),
		UserID:       user.ID,
		WalletNumber: number,
		Balance:      0,
		Currency:     defaultCurrency,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			existing, lookupErr := s.walletRepo.GetByUserID(ctx, user.ID)
			if lookupErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("user_id", user.ID.String()).
		Msg("wallet created")

	return wallet, nil
}

// InitiateDeposit records a pending deposit and starts a hosted checkout.
// The pending row stays behind on gateway failure so a later webhook or
// verification can still settle it.
func (s *LedgerServiceImpl) InitiateDeposit(ctx context.Context, user *domain.User, amount int64) (*ports.DepositIntent, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	wallet, err := s.GetOrCreateWallet(ctx, user)
	if err != nil {
		return nil, err
	}

	reference, err := generateReference()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate reference: %w", err))
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:        uuid.New(),
		UserID:    user.ID,
		WalletID:  wallet.ID,
		Type:      domain.TransactionTypeDeposit,
		Amount:    amount,
		Status:    domain.TransactionStatusPending,
		Reference: &reference,
		CreatedAt: now,
		UpdatedAt: now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create deposit: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	redirectURL, err := s.gateway.Initialize(ctx, user.Email, amount, reference)
	if err != nil {
		s.log.Error().Err(err).
			Str("reference", reference).
			Int64("amount", amount).
			Msg("gateway initialize failed, deposit stays pending")
		return nil, apperror.ErrGatewayFailure(err)
	}

	s.log.Info().
		Str("reference", reference).
		Str("user_id", user.ID.String()).
		Int64("amount", amount).
		Msg("deposit initiated")

	return &ports.DepositIntent{
		Reference:   reference,
		RedirectURL: redirectURL,
		Transaction: txn,
	}, nil
}

// GetDepositStatus returns the user's view of a deposit by reference.
// References belonging to other users are indistinguishable from unknown ones.
func (s *LedgerServiceImpl) GetDepositStatus(ctx context.Context, user *domain.User, reference string) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load transaction: %w", err))
	}
	if txn == nil || txn.UserID != user.ID {
		return nil, apperror.ErrTransactionNotFound()
	}
	return txn, nil
}

// TransferFunds moves funds between wallets atomically. Both wallets are
// locked in ascending ID order so concurrent opposing transfers cannot
// deadlock.
func (s *LedgerServiceImpl) TransferFunds(ctx context.Context, sender *domain.User, recipientWalletNumber string, amount int64) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	senderWallet, err := s.walletRepo.GetByUserID(ctx, sender.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load sender wallet: %w", err))
	}
	if senderWallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	recipientWallet, err := s.walletRepo.GetByNumber(ctx, recipientWalletNumber)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load recipient wallet: %w", err))
	}
	if recipientWallet == nil || recipientWallet.ID == senderWallet.ID {
		return nil, apperror.ErrInvalidRecipient()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	first, second := senderWallet.ID, recipientWallet.ID
	if second.String() < first.String() {
		first, second = second, first
	}

	locked := make(map[uuid.UUID]*domain.Wallet, 2)
	for _, id := range []uuid.UUID{first, second} {
		w, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, id)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
		}
		if w == nil {
			return nil, apperror.ErrWalletNotFound()
		}
		locked[id] = w
	}

	src := locked[senderWallet.ID]
	dst := locked[recipientWallet.ID]

	if src.Balance < amount {
		return nil, apperror.ErrInsufficientBalance()
	}

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, src.ID, src.Balance-amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("debit sender: %w", err))
	}
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, dst.ID, dst.Balance+amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("credit recipient: %w", err))
	}

	now := time.Now().UTC()
	description := fmt.Sprintf("Transfer to wallet %s", recipientWalletNumber)
	txn := &domain.Transaction{
		ID:                uuid.New(),
		UserID:            sender.ID,
		WalletID:          src.ID,
		Type:              domain.TransactionTypeTransfer,
		Amount:            amount,
		Status:            domain.TransactionStatusSuccess,
		RecipientWalletID: &dst.ID,
		Description:       &description,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transfer: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("sender_wallet", src.WalletNumber).
		Str("recipient_wallet", dst.WalletNumber).
		Int64("amount", amount).
		Msg("transfer completed")

	return txn, nil
}

// CreditWallet applies a pending deposit inside the caller's transaction.
func (s *LedgerServiceImpl) CreditWallet(ctx context.Context, tx pgx.Tx, transactionID uuid.UUID) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("load transaction: %w", err)
	}
	if txn == nil {
		return nil, apperror.ErrTransactionNotFound()
	}
	if txn.Status != domain.TransactionStatusPending {
		return nil, fmt.Errorf("transaction %s is not pending", transactionID)
	}

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, tx, txn.WalletID)
	if err != nil {
		return nil, fmt.Errorf("lock wallet: %w", err)
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	if err := s.walletRepo.UpdateBalance(ctx, tx, wallet.ID, wallet.Balance+txn.Amount); err != nil {
		return nil, fmt.Errorf("credit wallet: %w", err)
	}
	if err := s.txRepo.UpdateStatus(ctx, tx, txn.ID, domain.TransactionStatusSuccess); err != nil {
		return nil, fmt.Errorf("update transaction status: %w", err)
	}

	txn.Status = domain.TransactionStatusSuccess
	return txn, nil
}

// GetTransactionHistory returns a page of the user's ledger entries,
// newest first, with the total count.
func (s *LedgerServiceImpl) GetTransactionHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryPageSize {
		limit = maxHistoryPageSize
	}
	if offset < 0 {
		offset = 0
	}

	txns, total, err := s.txRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, total, nil
}

// DeleteUser removes the user and everything they own in one transaction.
// Webhook logs outlive the user but drop their transaction links first so
// the ledger rows can go.
func (s *LedgerServiceImpl) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("load user: %w", err))
	}
	if user == nil {
		return apperror.ErrUserNotFound()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.webhookRepo.ClearTransactionLinks(ctx, dbTx, userID); err != nil {
		return apperror.InternalError(fmt.Errorf("clear webhook links: %w", err))
	}
	if err := s.txRepo.DeleteByUser(ctx, dbTx, userID); err != nil {
		return apperror.InternalError(fmt.Errorf("delete transactions: %w", err))
	}
	if err := s.apiKeyRepo.DeleteByUser(ctx, dbTx, userID); err != nil {
		return apperror.InternalError(fmt.Errorf("delete api keys: %w", err))
	}
	if err := s.walletRepo.DeleteByUserID(ctx, dbTx, userID); err != nil {
		return apperror.InternalError(fmt.Errorf("delete wallet: %w", err))
	}
	if err := s.userRepo.Delete(ctx, dbTx, userID); err != nil {
		return apperror.InternalError(fmt.Errorf("delete user: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().Str("user_id", userID.String()).Msg("user account deleted")
	return nil
}

// generateWalletNumber produces a random 13-digit account number.
func generateWalletNumber() (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(walletNumberDigits), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%013d", n), nil
}

// generateReference produces a gateway transaction reference of the form
// paystack_<12 hex chars>.
func generateReference() (string, error) {
	raw := make([]byte, 6)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return "paystack_" + hex.EncodeToString(raw), nil
}

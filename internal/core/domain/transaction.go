package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the kind of money movement.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeTransfer   TransactionType = "transfer"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
)

// TransactionStatus represents the lifecycle state of a transaction.
// Status only ever moves pending -> success or pending -> failed.
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// Transaction is a ledger entry. Amount is in minor units (kobo) and is
// always positive; direction is carried by Type and the wallet ids.
type Transaction struct {
	ID                uuid.UUID         `json:"id"`
	UserID            uuid.UUID         `json:"user_id"`
	WalletID          uuid.UUID         `json:"wallet_id"`
	Type              TransactionType   `json:"type"`
	Amount            int64             `json:"amount"`
	Status            TransactionStatus `json:"status"`
	Reference         *string           `json:"reference,omitempty"`
	RecipientWalletID *uuid.UUID        `json:"recipient_wallet_id,omitempty"`
	Description       *string           `json:"description,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// IsTerminal returns true if the transaction is in a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusSuccess ||
		t.Status == TransactionStatusFailed
}

package dto

import (
	"time"

	"wallet-service/internal/core/domain"
)

// LoginResponse is the response body for a completed Google sign-in.
type LoginResponse struct {
	Token  string       `json:"token"`
	Expiry int64        `json:"expiry"` // Unix timestamp
	User   UserResponse `json:"user"`
}

// UserResponse is the public view of an account holder.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// DepositRequest is the request body for initiating a deposit.
type DepositRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// DepositResponse is the response body for a started hosted checkout.
type DepositResponse struct {
	Reference   string              `json:"reference"`
	RedirectURL string              `json:"redirect_url"`
	Transaction TransactionResponse `json:"transaction"`
}

// TransferRequest is the request body for wallet-to-wallet transfers.
type TransferRequest struct {
	RecipientWalletNumber string `json:"recipient_wallet_number" binding:"required,wallet_number"`
	Amount                int64  `json:"amount" binding:"required,gt=0"`
}

// WalletResponse is the response for balance queries.
type WalletResponse struct {
	WalletNumber string `json:"wallet_number"`
	Balance      int64  `json:"balance"`
	Currency     string `json:"currency"`
}

// TransactionResponse is the public view of a ledger entry.
type TransactionResponse struct {
	ID                string  `json:"id"`
	Type              string  `json:"type"`
	Amount            int64   `json:"amount"`
	Status            string  `json:"status"`
	Reference         *string `json:"reference,omitempty"`
	RecipientWalletID *string `json:"recipient_wallet_id,omitempty"`
	Description       *string `json:"description,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

// TransactionListResponse wraps a paginated transaction history.
type TransactionListResponse struct {
	Items  []TransactionResponse `json:"items"`
	Total  int64                 `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// CreateAPIKeyRequest is the request body for issuing an API key.
type CreateAPIKeyRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	Permissions []string `json:"permissions" binding:"required,min=1"`
	Expiry      string   `json:"expiry" binding:"required"`
}

// RolloverAPIKeyRequest is the request body for re-issuing an expired key.
type RolloverAPIKeyRequest struct {
	Expiry string `json:"expiry" binding:"required"`
}

// APIKeyResponse is the public view of an API key. The secret is never
// included; see IssuedAPIKeyResponse.
type APIKeyResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
	IsActive    bool     `json:"is_active"`
	IsRevoked   bool     `json:"is_revoked"`
	ExpiresAt   string   `json:"expires_at"`
	CreatedAt   string   `json:"created_at"`
}

// IssuedAPIKeyResponse carries the plaintext secret exactly once, at
// issue or rollover time.
type IssuedAPIKeyResponse struct {
	Secret string         `json:"secret"`
	Key    APIKeyResponse `json:"key"`
}

// WebhookPayload is the gateway notification body.
type WebhookPayload struct {
	Event string      `json:"event" binding:"required"`
	Data  WebhookData `json:"data" binding:"required"`
}

// WebhookData is the charge detail inside a gateway notification.
type WebhookData struct {
	Reference string `json:"reference" binding:"required"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
}

// ToUserResponse maps a domain user for API output.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
	}
}

// ToTransactionResponse maps a ledger entry for API output.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          t.ID.String(),
		Type:        string(t.Type),
		Amount:      t.Amount,
		Status:      string(t.Status),
		Reference:   t.Reference,
		Description: t.Description,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
	}
	if t.RecipientWalletID != nil {
		id := t.RecipientWalletID.String()
		resp.RecipientWalletID = &id
	}
	return resp
}

// ToAPIKeyResponse maps an API key for API output.
func ToAPIKeyResponse(k *domain.APIKey) APIKeyResponse {
	return APIKeyResponse{
		ID:          k.ID.String(),
		Name:        k.Name,
		Permissions: k.Permissions,
		IsActive:    k.IsActive,
		IsRevoked:   k.IsRevoked,
		ExpiresAt:   k.ExpiresAt.UTC().Format(time.RFC3339),
		CreatedAt:   k.CreatedAt.UTC().Format(time.RFC3339),
	}
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransaction_IsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status TransactionStatus
		want   bool
	}{
		{"pending", TransactionStatusPending, false},
		{"success", TransactionStatusSuccess, true},
		{"failed", TransactionStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &Transaction{Status: tt.status}
			assert.Equal(t, tt.want, tx.IsTerminal())
		})
	}
}

func TestAPIKey_IsUsable(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name      string
		active    bool
		revoked   bool
		expiresAt time.Time
		want      bool
	}{
		{"live key", true, false, future, true},
		{"revoked", true, true, future, false},
		{"inactive", false, false, future, false},
		{"expired", true, false, past, false},
		{"expires exactly now", true, false, now, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := &APIKey{
				IsActive:  tt.active,
				IsRevoked: tt.revoked,
				ExpiresAt: tt.expiresAt,
			}
			assert.Equal(t, tt.want, k.IsUsable(now))
		})
	}
}

func TestAPIKey_HasPermission(t *testing.T) {
	k := &APIKey{Permissions: []string{"read", "transfer"}}

	assert.True(t, k.HasPermission(PermissionRead))
	assert.True(t, k.HasPermission(PermissionTransfer))
	assert.False(t, k.HasPermission(PermissionDeposit))

	empty := &APIKey{}
	assert.False(t, empty.HasPermission(PermissionRead))
}

func TestValidPermission(t *testing.T) {
	assert.True(t, ValidPermission("read"))
	assert.True(t, ValidPermission("deposit"))
	assert.True(t, ValidPermission("transfer"))
	assert.False(t, ValidPermission("admin"))
	assert.False(t, ValidPermission(""))
	assert.False(t, ValidPermission("READ"))
}

func TestTransactionType_Constants(t *testing.T) {
	assert.Equal(t, TransactionType("deposit"), TransactionTypeDeposit)
	assert.Equal(t, TransactionType("transfer"), TransactionTypeTransfer)
	assert.Equal(t, TransactionType("withdrawal"), TransactionTypeWithdrawal)
}

func TestTransactionStatus_Constants(t *testing.T) {
	assert.Equal(t, TransactionStatus("pending"), TransactionStatusPending)
	assert.Equal(t, TransactionStatus("success"), TransactionStatusSuccess)
	assert.Equal(t, TransactionStatus("failed"), TransactionStatusFailed)
}

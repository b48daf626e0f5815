package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("CONF_001", "Insufficient balance", http.StatusPaymentRequired),
			expected: "[CONF_001] Insufficient balance",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("VAL_001", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestAuthErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"MissingCredential", ErrMissingCredential(), "AUTH_001", 401},
		{"InvalidCredential", ErrInvalidCredential(), "AUTH_002", 401},
		{"ExpiredSession", ErrExpiredSession(), "AUTH_003", 401},
		{"MalformedSession", ErrMalformedSession(), "AUTH_004", 401},
		{"MissingPermission", ErrMissingPermission("transfer"), "AUTH_005", 403},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestMissingPermission_NamesPermission(t *testing.T) {
	err := ErrMissingPermission("deposit")
	assert.Contains(t, err.Message, `"deposit"`)
}

func TestNotFoundErrors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code string
	}{
		{"User", ErrUserNotFound(), "NF_001"},
		{"Wallet", ErrWalletNotFound(), "NF_002"},
		{"Transaction", ErrTransactionNotFound(), "NF_003"},
		{"APIKey", ErrAPIKeyNotFound(), "NF_004"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, http.StatusNotFound, tt.err.HTTPStatus)
		})
	}
}

func TestConflictErrors(t *testing.T) {
	assert.Equal(t, http.StatusPaymentRequired, ErrInsufficientBalance().HTTPStatus)
	assert.Equal(t, http.StatusBadRequest, ErrInvalidRecipient().HTTPStatus)
	assert.Equal(t, http.StatusConflict, ErrKeyNotYetExpired().HTTPStatus)

	limitErr := ErrAPIKeyLimitExceeded(5)
	assert.Equal(t, "CONF_003", limitErr.Code)
	assert.Equal(t, http.StatusConflict, limitErr.HTTPStatus)
	assert.Contains(t, limitErr.Message, "5")
}

func TestValidationErrors(t *testing.T) {
	assert.Equal(t, "VAL_001", ErrInvalidAmount().Code)
	assert.Equal(t, "VAL_002", ErrInvalidExpiryFormat().Code)
	assert.Equal(t, http.StatusBadRequest, ErrInvalidExpiryFormat().HTTPStatus)
}

func TestGatewayFailure(t *testing.T) {
	inner := fmt.Errorf("timeout")
	err := ErrGatewayFailure(inner)
	assert.Equal(t, "EXT_001", err.Code)
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus)
	assert.True(t, errors.Is(err, inner))
}

func TestRateLimitError(t *testing.T) {
	err := ErrRateLimitExceeded()
	assert.Equal(t, "RATE_001", err.Code)
	assert.Equal(t, 429, err.HTTPStatus)
}

func TestSystemErrors(t *testing.T) {
	inner := fmt.Errorf("pg: connection closed")
	dbErr := ErrDatabaseError(inner)
	assert.Equal(t, "SYS_001", dbErr.Code)
	assert.Equal(t, 500, dbErr.HTTPStatus)
	assert.True(t, errors.Is(dbErr, inner))

	intErr := InternalError(inner)
	assert.Equal(t, "SYS_001", intErr.Code)
	assert.Equal(t, 500, intErr.HTTPStatus)
}

package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Validation (VAL) ----

func ErrInvalidAmount() *AppError {
	return New("VAL_001", "Invalid amount", http.StatusBadRequest)
}

func ErrInvalidExpiryFormat() *AppError {
	return New("VAL_002", "Invalid expiry format, expected <n><H|D|M|Y>", http.StatusBadRequest)
}

// Validation returns a VAL_001-style validation error with a custom message.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

// ---- Authentication & Authorization (AUTH) ----

func ErrMissingCredential() *AppError {
	return New("AUTH_001", "Authentication credential required", http.StatusUnauthorized)
}

func ErrInvalidCredential() *AppError {
	return New("AUTH_002", "Invalid authentication credential", http.StatusUnauthorized)
}

func ErrExpiredSession() *AppError {
	return New("AUTH_003", "Session has expired", http.StatusUnauthorized)
}

func ErrMalformedSession() *AppError {
	return New("AUTH_004", "Invalid session token", http.StatusUnauthorized)
}

func ErrMissingPermission(permission string) *AppError {
	return New("AUTH_005", fmt.Sprintf("API key lacks %q permission", permission), http.StatusForbidden)
}

// ---- Not Found (NF) ----

func ErrUserNotFound() *AppError {
	return New("NF_001", "User not found", http.StatusNotFound)
}

func ErrWalletNotFound() *AppError {
	return New("NF_002", "Wallet not found", http.StatusNotFound)
}

func ErrTransactionNotFound() *AppError {
	return New("NF_003", "Transaction not found", http.StatusNotFound)
}

func ErrAPIKeyNotFound() *AppError {
	return New("NF_004", "API key not found", http.StatusNotFound)
}

// ---- Conflicts & Business Rules (CONF) ----

func ErrInsufficientBalance() *AppError {
	return New("CONF_001", "Insufficient balance in wallet", http.StatusPaymentRequired)
}

func ErrInvalidRecipient() *AppError {
	return New("CONF_002", "Invalid recipient wallet", http.StatusBadRequest)
}

func ErrAPIKeyLimitExceeded(limit int) *AppError {
	return New("CONF_003", fmt.Sprintf("Active API key limit of %d reached", limit), http.StatusConflict)
}

func ErrKeyNotYetExpired() *AppError {
	return New("CONF_004", "API key has not expired yet", http.StatusConflict)
}

// ---- External Services (EXT) ----

func ErrGatewayFailure(err error) *AppError {
	return Wrap("EXT_001", "Payment gateway request failed", http.StatusBadGateway, err)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

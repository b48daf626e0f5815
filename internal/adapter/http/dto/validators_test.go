package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := CreateAPIKeyRequest{
		Name:   "  ci key  ",
		Expiry: " 1M ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "ci key", req.Name)
	assert.Equal(t, "1M", req.Expiry)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	req := CreateAPIKeyRequest{
		Name:   "reporting <script>alert('x')</script> key",
		Expiry: "1M",
	}
	SanitizeStruct(&req)

	assert.Contains(t, req.Name, "&lt;script&gt;")
	assert.NotContains(t, req.Name, "<script>")
}

func TestSanitizeStruct_HandlesPointerString(t *testing.T) {
	desc := "  Transfer to savings  "
	resp := TransactionResponse{
		ID:          "tx-1",
		Description: &desc,
	}
	SanitizeStruct(&resp)

	assert.Equal(t, "Transfer to savings", *resp.Description)
}

func TestSanitizeStruct_NilPointerIsNoOp(t *testing.T) {
	resp := TransactionResponse{ID: "tx-1"}
	SanitizeStruct(&resp)
	assert.Nil(t, resp.Description)
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	s := "hello"
	SanitizeStruct(s) // should not panic
}

// --- Custom Validator tests ---

func TestWalletNumber_Valid(t *testing.T) {
	cases := []string{
		"1234567890123",
		"0000000000000",
		"9999999999999",
	}
	for _, tc := range cases {
		assert.True(t, walletNumberRe.MatchString(tc), "expected valid: %s", tc)
	}
}

func TestWalletNumber_Invalid(t *testing.T) {
	cases := []string{
		"123456789012",    // 12 digits
		"12345678901234",  // 14 digits
		"12345 7890123",   // space
		"abcdefghijklm",   // letters
		"123456789012x",   // trailing letter
		"",                // empty
		"1234567890123\n", // newline
	}
	for _, tc := range cases {
		assert.False(t, walletNumberRe.MatchString(tc), "expected invalid: %s", tc)
	}
}

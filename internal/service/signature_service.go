package service

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// HMACSignatureVerifier implements ports.SignatureVerifier using
// HMAC-SHA512, the scheme Paystack signs webhook deliveries with.
type HMACSignatureVerifier struct {
	secret []byte
}

// NewHMACSignatureVerifier creates a verifier keyed with the gateway secret.
func NewHMACSignatureVerifier(secretKey string) *HMACSignatureVerifier {
	return &HMACSignatureVerifier{secret: []byte(secretKey)}
}

// Sign computes HMAC-SHA512 of the raw body.
// Returns lowercase hex-encoded signature.
func (s *HMACSignatureVerifier) Sign(body []byte) string {
	mac := hmac.New(sha512.New, s.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks if signature matches HMAC-SHA512(secret, body).
// Uses constant-time comparison to prevent timing attacks.
func (s *HMACSignatureVerifier) Verify(body []byte, signature string) bool {
	expected := s.Sign(body)
	return hmac.Equal([]byte(expected), []byte(signature))
}

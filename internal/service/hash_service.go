package service

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"wallet-service/pkg/apperror"

	"golang.org/x/crypto/bcrypt"
)

// API key secrets carry a recognizable prefix so leaked keys can be
// grepped for in logs and repositories.
const apiKeyPrefix = "wsk_"

const apiKeySecretBytes = 32

// BcryptHashService implements ports.HashService using bcrypt.
type BcryptHashService struct {
	cost int
}

// NewBcryptHashService creates a bcrypt hash service with the given cost.
func NewBcryptHashService(cost int) *BcryptHashService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHashService{cost: cost}
}

// Hash generates a bcrypt hash of the secret.
func (s *BcryptHashService) Hash(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.cost)
	if err != nil {
		return "", fmt.Errorf("hashing secret: %w", err)
	}
	return string(hash), nil
}

// Verify checks if a secret matches the given bcrypt hash.
// A mismatch is not an error, only a false result.
func (s *BcryptHashService) Verify(secret string, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("comparing hash: %w", err)
	}
	return true, nil
}

// GenerateAPIKey produces a new random API key secret.
// Format: wsk_ followed by 43 url-safe base64 characters (32 bytes).
func GenerateAPIKey() (string, error) {
	raw := make([]byte, apiKeySecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating key material: %w", err)
	}
	return apiKeyPrefix + base64.RawURLEncoding.EncodeToString(raw), nil
}

var expirySpecPattern = regexp.MustCompile(`^(\d+)([HDMY])$`)

// ParseExpirySpec converts an expiry specification of the form
// <n><H|D|M|Y> into a duration. Units are case-insensitive; a month
// counts as 30 days and a year as 365.
func ParseExpirySpec(spec string) (time.Duration, error) {
	m := expirySpecPattern.FindStringSubmatch(strings.ToUpper(spec))
	if m == nil {
		return 0, apperror.ErrInvalidExpiryFormat()
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= 0 {
		return 0, apperror.ErrInvalidExpiryFormat()
	}

	var unit time.Duration
	switch m[2] {
	case "H":
		unit = time.Hour
	case "D":
		unit = 24 * time.Hour
	case "M":
		unit = 30 * 24 * time.Hour
	case "Y":
		unit = 365 * 24 * time.Hour
	}

	return time.Duration(n) * unit, nil
}

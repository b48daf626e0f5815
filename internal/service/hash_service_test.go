package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHashService_HashAndVerify(t *testing.T) {
	svc := NewBcryptHashService(4) // min cost keeps the test fast

	hash, err := svc.Hash("wsk_some_secret_value")
	require.NoError(t, err)
	assert.NotEqual(t, "wsk_some_secret_value", hash)

	ok, err := svc.Verify("wsk_some_secret_value", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify("wsk_wrong_value", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBcryptHashService_Verify_BadHash(t *testing.T) {
	svc := NewBcryptHashService(4)

	ok, err := svc.Verify("anything", "not-a-bcrypt-hash")
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestGenerateAPIKey(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "wsk_"))
	assert.Len(t, key, len("wsk_")+43)

	other, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestParseExpirySpec(t *testing.T) {
	tests := []struct {
		spec string
		want time.Duration
	}{
		{"12H", 12 * time.Hour},
		{"2D", 48 * time.Hour},
		{"1M", 30 * 24 * time.Hour},
		{"1Y", 365 * 24 * time.Hour},
		{"2d", 48 * time.Hour}, // units are case-insensitive
		{"90D", 90 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := ParseExpirySpec(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseExpirySpec_Invalid(t *testing.T) {
	for _, spec := range []string{"", "2X", "D2", "2", "H", "-1D", "1.5D", "2 D"} {
		t.Run(spec, func(t *testing.T) {
			_, err := ParseExpirySpec(spec)
			assertAppError(t, err, "VAL_002")
		})
	}
}

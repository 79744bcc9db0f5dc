package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough"

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong-pass", hash))
	assert.False(t, CheckPasswordHash("s3cret-pass", ""))

	_, err = HashPassword(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestGenerateAndParseJWT(t *testing.T) {
	now := time.Now()
	token, expiresAt, err := GenerateJWT("user-1", "siti", testSecret, time.Hour, "mbg-dapur-ledger", now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Hour), expiresAt, time.Second)

	claims, err := ParseAndValidateJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "siti", claims.Username)
	assert.Equal(t, "mbg-dapur-ledger", claims.Issuer)
}

func TestParseJWT_Rejections(t *testing.T) {
	now := time.Now()

	token, _, err := GenerateJWT("user-1", "siti", testSecret, time.Hour, "issuer", now)
	require.NoError(t, err)
	_, err = ParseAndValidateJWT(token, "another-secret")
	assert.Error(t, err, "wrong secret")

	expired, _, err := GenerateJWT("user-1", "siti", testSecret, time.Minute, "issuer", now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = ParseAndValidateJWT(expired, testSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = ParseAndValidateJWT(noSubject, testSecret)
	assert.Error(t, err)

	_, _, err = GenerateJWT("user-1", "siti", "", time.Hour, "issuer", now)
	assert.Error(t, err)
}

func TestPosthogWrapper_Disabled(t *testing.T) {
	w := InitializePosthogClient("", "", nil)
	assert.False(t, w.IsInitialized())
	w.Enqueue("user-1", "journal_entry_posted", nil)
	w.Close()

	var nilWrapper *PosthogClientWrapper
	assert.False(t, nilWrapper.IsInitialized())
}

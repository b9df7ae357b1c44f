package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2!")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2!", hash)

	assert.True(t, CheckPassword("hunter2!", hash))
	assert.False(t, CheckPassword("hunter3!", hash))
	assert.False(t, CheckPassword("", hash))
	assert.False(t, CheckPassword("hunter2!", ""))
}

func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("same-password")
	require.NoError(t, err)
	h2, err := HashPassword("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2, "hashes should carry distinct salts")
}

func TestGenerateOtp(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		otp, err := GenerateOtp()
		require.NoError(t, err)
		require.Len(t, otp, OtpDigits)
		for _, ch := range otp {
			assert.True(t, ch >= '0' && ch <= '9', "otp must be numeric: %q", otp)
		}
		seen[otp] = true
	}
	assert.Greater(t, len(seen), 1, "20 draws should not all collide")
}

func TestOtpHashRoundTrip(t *testing.T) {
	hash, err := HashOtp("042137")
	require.NoError(t, err)
	assert.True(t, CheckOtp("042137", hash))
	assert.False(t, CheckOtp("042138", hash))
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", "user-123", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", "user-123", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken("secret", "user-123", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("secret", token)
	assert.Error(t, err)
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService("secret", "jobseeker-api", time.Hour)

	token, exp, err := svc.Issue("user-1", "ana@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService("secret", "", time.Hour)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := svc.Issue("user-1", "ana@example.com")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_WrongSecret(t *testing.T) {
	token, _, err := NewTokenService("secret", "", time.Hour).Issue("user-1", "a@b.co")
	require.NoError(t, err)

	_, err = NewTokenService("other", "", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = NewTokenService("secret", "", time.Hour).Parse("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_NoSecret(t *testing.T) {
	_, _, err := NewTokenService("", "", time.Hour).Issue("user-1", "a@b.co")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))
	assert.False(t, CheckPassword("", "correct horse"))

	_, err = HashPassword("short")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestResetCode(t *testing.T) {
	code, hash, err := GenerateResetCode()
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Regexp(t, `^[0-9]{6}$`, code)

	assert.NoError(t, CheckResetCode(hash, code))
	assert.ErrorIs(t, CheckResetCode(hash, "000000x"), ErrResetCodeMismatch)
	assert.ErrorIs(t, CheckResetCode("", code), ErrResetCodeMismatch)
}

package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour, "habitflow")
	userID := uuid.New()

	token, expiresAt, err := tm.GenerateToken(userID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "habitflow", claims.Issuer)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour, "habitflow")
	other := NewTokenManager("other-secret", time.Hour, "habitflow")

	token, _, err := tm.GenerateToken(uuid.New())
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute, "habitflow")

	token, _, err := tm.GenerateToken(uuid.New())
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour, "habitflow")

	_, err := tm.ValidateToken("not.a.token")
	assert.Error(t, err)
}

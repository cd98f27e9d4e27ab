package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/agro-advisor/internal/auth"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := auth.NewService("test-secret", time.Hour)

	token, err := svc.GenerateToken("operator")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Username)
	assert.Equal(t, "operator", claims.Subject)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := auth.NewService("secret-a", time.Hour).GenerateToken("operator")
	require.NoError(t, err)

	_, err = auth.NewService("secret-b", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := auth.NewService("test-secret", time.Hour)

	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := auth.NewService("test-secret", time.Millisecond)

	token, err := svc.GenerateToken("operator")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestTokenDuration_DefaultsWhenNonPositive(t *testing.T) {
	assert.Equal(t, 24*time.Hour, auth.NewService("test-secret", 0).TokenDuration())
	assert.Equal(t, time.Hour, auth.NewService("test-secret", time.Hour).TokenDuration())
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("rainy-season")
	require.NoError(t, err)

	assert.True(t, auth.CheckPassword("rainy-season", hash))
	assert.False(t, auth.CheckPassword("dry-season", hash))
}

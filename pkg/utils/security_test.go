package utils

import (
	"os"
	"testing"

	"clipstream/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	config.Set(&config.Config{
		App: config.AppConfig{Name: "clipstream-test"},
		JWT: config.JWTConfig{Secret: "test-secret", ExpireHours: 1},
	})
	os.Exit(m.Run())
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("super-secret-1")
	require.NoError(t, err)
	assert.NotEqual(t, "super-secret-1", hash)

	assert.True(t, VerifyPassword("super-secret-1", hash))
	assert.False(t, VerifyPassword("wrong", hash))
}

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "clipstream-test", claims.Issuer)
}

func TestParseTokenRejectsTampered(t *testing.T) {
	token, err := GenerateToken(42)
	require.NoError(t, err)

	_, err = ParseToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

package auth

import (
	"testing"
	"time"

	"inspections-server/internal/shared/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestConfig(t *testing.T, expiration time.Duration) {
	t.Helper()
	prev := config.GlobalConfig
	config.GlobalConfig = &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "0123456789abcdef0123456789abcdef",
			TokenExpiration: expiration,
		},
	}
	t.Cleanup(func() { config.GlobalConfig = prev })
}

func TestGenerateAndValidateJWT(t *testing.T) {
	setTestConfig(t, 24*time.Hour)

	token, err := GenerateJWT(42, "inspector@example.com", "Inspector")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "inspector@example.com", claims.Email)
	assert.Equal(t, "Inspector", claims.Name)
	assert.Equal(t, "user_42", claims.Subject)
}

func TestValidateJWTRejectsExpiredToken(t *testing.T) {
	setTestConfig(t, -time.Hour)

	token, err := GenerateJWT(1, "a@b.c", "A")
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	setTestConfig(t, time.Hour)

	_, err := ValidateJWT("not.a.token")
	assert.Error(t, err)
}

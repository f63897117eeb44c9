package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cohortly/config"
)

func TestTokenRoundTrip(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"

	token, err := GenerateToken(42, RoleParticipant, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.SubjectID)
	assert.Equal(t, RoleParticipant, claims.Role)
}

func TestParseTokenExpired(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"

	token, err := GenerateToken(1, RoleAdmin, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenWrongSecret(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"
	token, err := GenerateToken(1, RoleAdmin, time.Hour)
	require.NoError(t, err)

	config.AppConfig.JWTSecret = "other-secret"
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"

	_, err := ParseToken("not-a-token")
	assert.Error(t, err)
}

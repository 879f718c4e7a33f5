package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-123"

func TestGenerateAndValidateAccessToken(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)

	token, err := m.GenerateAccessToken("staff-001", "admin@mckaycpa.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "staff-001", claims.StaffID)
	assert.Equal(t, "admin@mckaycpa.com", claims.Email)
	assert.Equal(t, "intake-service", claims.Issuer)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	m := NewJWTManager(testSecret, -time.Minute)

	token, err := m.GenerateAccessToken("staff-001", "admin@mckaycpa.com")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)
	other := NewJWTManager("a-completely-different-secret-value", time.Hour)

	token, err := m.GenerateAccessToken("staff-001", "admin@mckaycpa.com")
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)

	_, err := m.ValidateAccessToken("not-a-jwt")
	assert.Error(t, err)
}

package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	m := NewJWTManager("test-secret", 1)

	tokenString, err := m.GenerateToken("svc-client")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := m.VerifyToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "svc-client", claims.ClientID)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	m1 := NewJWTManager("secret-one", 1)
	m2 := NewJWTManager("secret-two", 1)

	tokenString, err := m1.GenerateToken("svc-client")
	require.NoError(t, err)

	_, err = m2.VerifyToken(tokenString)
	assert.Error(t, err)
}

func TestVerifyToken_Garbage(t *testing.T) {
	m := NewJWTManager("test-secret", 1)
	_, err := m.VerifyToken("not.a.token")
	assert.Error(t, err)
}

func TestNewJWTManager_DefaultExpiry(t *testing.T) {
	m := NewJWTManager("test-secret", 0)
	assert.Equal(t, 24*time.Hour, m.tokenDur)
}

func TestClientSecretHashing(t *testing.T) {
	hash, err := HashClientSecret("s3cret")
	require.NoError(t, err)

	assert.True(t, CheckClientSecret("s3cret", hash))
	assert.False(t, CheckClientSecret("wrong", hash))
	assert.False(t, CheckClientSecret("s3cret", "not-a-hash"))
}

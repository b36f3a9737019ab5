package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	j := NewJWT("test-secret")

	token, err := j.GenerateToken("64f0c2a1b3d4e5f678901234")
	require.NoError(t, err)

	claims, err := j.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "64f0c2a1b3d4e5f678901234", claims.UserID)
	assert.Empty(t, claims.Role)
}

func TestAdminTokenCarriesRole(t *testing.T) {
	j := NewJWT("test-secret")

	token, err := j.GenerateAdminToken("admin@example.com")
	require.NoError(t, err)

	claims, err := j.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := NewJWT("secret-a").GenerateToken("u1")
	require.NoError(t, err)

	_, err = NewJWT("secret-b").ValidateToken(token)
	assert.Error(t, err)
}

func TestGarbageTokenRejected(t *testing.T) {
	_, err := NewJWT("test-secret").ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-passw0rd")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-passw0rd", hash)

	assert.True(t, CheckPassword("s3cret-passw0rd", hash))
	assert.False(t, CheckPassword("wrong", hash))
}

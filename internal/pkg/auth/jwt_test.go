// internal/pkg/auth/jwt_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pos-backend/internal/config"
)

func testJWTConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "POS Backend"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-key-that-is-long-enough!",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 7 * 24 * time.Hour,
		},
	}
}

func TestJWTManagerAccessToken(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	token, err := manager.GenerateAccessToken(42, "cashier1", "cashier")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.OperatorID)
	assert.Equal(t, "cashier1", claims.Username)
	assert.Equal(t, "cashier", claims.Role)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, "operator:42", claims.Subject)
}

func TestJWTManagerRefreshToken(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	token, err := manager.GenerateRefreshToken(42, "cashier1")
	require.NoError(t, err)

	claims, err := manager.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.OperatorID)
	assert.Equal(t, "refresh", claims.TokenType)
	// The role is resolved fresh on refresh, never from the token.
	assert.Empty(t, claims.Role)
}

func TestJWTManagerTokenTypeMismatch(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	access, err := manager.GenerateAccessToken(1, "cashier1", "cashier")
	require.NoError(t, err)
	refresh, err := manager.GenerateRefreshToken(1, "cashier1")
	require.NoError(t, err)

	_, err = manager.ValidateRefreshToken(access)
	assert.Error(t, err)
	_, err = manager.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestJWTManagerRejectsTampering(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	token, err := manager.GenerateAccessToken(1, "cashier1", "cashier")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		otherCfg := testJWTConfig()
		otherCfg.JWT.Secret = "another-secret-key-that-is-long-enough"
		other := NewJWTManager(otherCfg)

		_, err := other.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := manager.ValidateToken("not.a.token")
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		expiredCfg := testJWTConfig()
		expiredCfg.JWT.AccessTokenExpiry = -time.Minute
		expired := NewJWTManager(expiredCfg)

		token, err := expired.GenerateAccessToken(1, "cashier1", "cashier")
		require.NoError(t, err)

		_, err = manager.ValidateToken(token)
		assert.Error(t, err)
	})
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc123", ExtractTokenFromHeader("Bearer abc123"))
	assert.Empty(t, ExtractTokenFromHeader("abc123"))
	assert.Empty(t, ExtractTokenFromHeader("Basic abc123"))
	assert.Empty(t, ExtractTokenFromHeader(""))
}

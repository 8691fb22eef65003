// internal/pkg/auth/password_test.go
package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pos-backend/internal/config"
)

func testPasswordManager() *PasswordManager {
	return NewPasswordManager(&config.Config{
		Security: config.SecurityConfig{BcryptCost: 4}, // minimum cost keeps tests fast
	})
}

func TestHashAndVerifyPassword(t *testing.T) {
	manager := testPasswordManager()

	hash, err := manager.HashPassword("Str0ng!Pass")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!Pass", hash)

	assert.NoError(t, manager.VerifyPassword("Str0ng!Pass", hash))
	assert.Error(t, manager.VerifyPassword("Wr0ng!Pass", hash))
}

func TestValidatePassword(t *testing.T) {
	manager := testPasswordManager()

	t.Run("accepts a strong password", func(t *testing.T) {
		assert.NoError(t, manager.ValidatePassword("Str0ng!Pass"))
	})

	t.Run("rejects weak passwords", func(t *testing.T) {
		cases := map[string]string{
			"too short":            "S0r!t",
			"no uppercase":         "n0upper!case",
			"no lowercase":         "N0LOWER!CASE",
			"no number":            "NoNumber!Here",
			"no special character": "N0SpecialHere",
			"sequential numbers":   "Bad123!Word",
			"repeating characters": "Baaad0!Word",
			"common password":      "Password9!x",
		}

		for name, password := range cases {
			t.Run(name, func(t *testing.T) {
				assert.Error(t, manager.ValidatePassword(password))
			})
		}
	})
}

package jwt

import (
	"testing"

	"Receipt-Scan-Backend/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundtrip(t *testing.T) {
	service := NewJWTServiceWithSecret("test-secret")

	token := service.GenerateTokenUser("user-1")
	require.NotEmpty(t, token)

	userID, err := service.GetUserIDByToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestTokenInvalid(t *testing.T) {
	service := NewJWTServiceWithSecret("test-secret")

	t.Run("garbage token", func(t *testing.T) {
		_, err := service.GetUserIDByToken("not-a-token")
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTServiceWithSecret("another-secret")
		token := other.GenerateTokenUser("user-1")

		_, err := service.GetUserIDByToken(token)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("empty subject", func(t *testing.T) {
		token := service.GenerateTokenUser("")
		_, err := service.GetUserIDByToken(token)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})
}

package authutils

import (
	"context"
	"testing"
	"time"

	"edu-game-server/shared/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTVerifier_InterServiceToken(t *testing.T) {
	v, err := NewJWTVerifier("test-secret", nil)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("valid token", func(t *testing.T) {
		token, err := v.GenerateInterServiceToken("api-gateway", "api-gateway", time.Minute)
		require.NoError(t, err)

		claims, err := v.VerifyInterServiceToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "api-gateway", claims.Subject)
		assert.True(t, claims.HasScope("anything"))
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := v.GenerateInterServiceToken("api-gateway", "api-gateway", -time.Minute)
		require.NoError(t, err)

		_, err = v.VerifyInterServiceToken(ctx, token)
		assert.ErrorIs(t, err, models.ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewJWTVerifier("other-secret", nil)
		require.NoError(t, err)
		token, err := other.GenerateInterServiceToken("api-gateway", "api-gateway", time.Minute)
		require.NoError(t, err)

		_, err = v.VerifyInterServiceToken(ctx, token)
		assert.ErrorIs(t, err, models.ErrTokenInvalid)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := v.VerifyInterServiceToken(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, models.ErrTokenMalformed)
	})

	t.Run("missing subject", func(t *testing.T) {
		claims := models.ServiceClaims{RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = v.VerifyInterServiceToken(ctx, token)
		assert.ErrorIs(t, err, models.ErrTokenInvalid)
	})
}

func TestNewJWTVerifier_EmptySecret(t *testing.T) {
	_, err := NewJWTVerifier("", nil)
	assert.Error(t, err)
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/spec-kit/commerce-service/internal/domain"
)

func TestTokenRoundtrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	user := &domain.User{
		ID:    primitive.NewObjectID(),
		Email: "a@x.com",
		Role:  domain.UserRolePremium,
	}

	token, exp, err := tm.GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.True(t, exp.After(time.Now().Add(59*time.Minute)))

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, domain.UserRolePremium, claims.Role)
	assert.NotEmpty(t, claims.ID, "jti is the revocation handle")
}

func TestParseTokenWrongSecret(t *testing.T) {
	user := &domain.User{ID: primitive.NewObjectID(), Email: "a@x.com"}

	token, _, err := NewTokenManager("secret-one", 60).GenerateToken(user)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-two", 60).ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	_, err := tm.ParseToken("not-a-jwt")
	assert.Error(t, err)
}

func TestNewTokenManagerDefaultTTL(t *testing.T) {
	tm := NewTokenManager("test-secret", 0)

	_, exp, err := tm.GenerateToken(&domain.User{ID: primitive.NewObjectID()})
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now().Add(59*time.Minute)))
}

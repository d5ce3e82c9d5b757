package auth

import (
	"context"
	"testing"
	"time"

	"groovy/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("securePassword123")
	require.NoError(t, err)
	assert.NotEqual(t, "securePassword123", hash)

	assert.True(t, CheckPasswordHash("securePassword123", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
	assert.False(t, CheckPasswordHash("anything", ""))

	_, err = HashPassword("")
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	user := &model.User{ID: 42, Email: "john.doe@example.com", Role: model.RoleArtist}

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "john.doe@example.com", claims.Subject)
	assert.Equal(t, model.RoleArtist, claims.Role)

	p := Principal{UserID: claims.UserID, Email: claims.Subject, Role: claims.Role}
	assert.True(t, p.HasAnyRole(model.RoleAdmin, model.RoleArtist))
	assert.False(t, p.IsAdmin())
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenService("a", time.Hour).GenerateToken(&model.User{ID: 1, Email: "a@b.c"})
	require.NoError(t, err)

	_, err = NewTokenService("b", time.Hour).ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	svc := NewTokenService("secret", time.Minute)
	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }
	token, err := svc.GenerateToken(&model.User{ID: 1, Email: "a@b.c"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFrom(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), Principal{UserID: 3, Role: model.RoleAdmin})
	p, ok := PrincipalFrom(ctx)
	require.True(t, ok)
	assert.True(t, p.IsAdmin())
}

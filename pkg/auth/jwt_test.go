package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	tokens := NewTokens("test-secret")

	raw, err := tokens.Issue("u1", "admin")
	require.NoError(t, err)

	id, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "u1", Role: "admin"}, id)
	assert.True(t, id.IsAdmin())
}

func TestVerify_WrongSecret(t *testing.T) {
	raw, err := NewTokens("a").Issue("u1", "user")
	require.NoError(t, err)

	_, err = NewTokens("b").Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	tokens := NewTokens("s")
	issuedAt := time.Now().Add(-8 * 24 * time.Hour)
	tokens.now = func() time.Time { return issuedAt }

	raw, err := tokens.Issue("u1", "user")
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenTTLIsSevenDays(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, NewTokens("s").TTL())
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "secret1"))
	assert.False(t, CheckPassword(hash, "secret2"))
}

func TestIdentityContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{UserID: "u1", Role: "user"})
	id, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", id.UserID)
	assert.False(t, id.IsAdmin())
}

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amexing/amexing-ops/internal/shared"
)

func TestTokensRoundTrip(t *testing.T) {
	tokens, err := NewTokens("0123456789abcdef0123", time.Hour)
	require.NoError(t, err)

	token, expires, err := tokens.Issue(shared.Actor{ID: 42, Email: "a@b.mx", Role: shared.RoleAdmin})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	id, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestTokensRejectExpired(t *testing.T) {
	tokens, err := NewTokens("0123456789abcdef0123", time.Minute)
	require.NoError(t, err)
	issuedAt := time.Now().Add(-2 * time.Hour)
	tokens.now = func() time.Time { return issuedAt }
	token, _, err := tokens.Issue(shared.Actor{ID: 1, Role: shared.RoleAdmin})
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.Verify(token)
	assert.True(t, errors.Is(err, shared.ErrUnauthorized))
}

func TestTokensRejectForeignSignature(t *testing.T) {
	issuer, err := NewTokens("0123456789abcdef0123", time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokens("another-secret-value-xyz", time.Hour)
	require.NoError(t, err)

	token, _, err := issuer.Issue(shared.Actor{ID: 1, Role: shared.RoleAdmin})
	require.NoError(t, err)
	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestTokensRejectNoneAlgorithm(t *testing.T) {
	tokens, err := NewTokens("0123456789abcdef0123", time.Hour)
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1", Issuer: tokenIssuer}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Verify(unsigned)
	assert.Error(t, err)
}

func TestNewTokensRequiresSecret(t *testing.T) {
	_, err := NewTokens("short", time.Hour)
	assert.Error(t, err)
}

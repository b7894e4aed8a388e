package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casecraft/casecraft-api/internal/apperr"
	"github.com/casecraft/casecraft-api/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestTokenManager(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(config.Auth{
		JWTSecret:     testSecret,
		TokenLifetime: 30 * time.Minute,
	})
	require.NoError(t, err)
	return m
}

func TestNewTokenManager(t *testing.T) {
	t.Run("Should reject a short secret", func(t *testing.T) {
		_, err := NewTokenManager(config.Auth{JWTSecret: "too-short"})
		assert.Error(t, err)
	})
}

func TestTokenManagerIssueAndValidate(t *testing.T) {
	t.Run("Should round-trip the subject", func(t *testing.T) {
		m := newTestTokenManager(t)

		token, err := m.Issue("alice")
		require.NoError(t, err)

		subject, err := m.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", subject)
	})

	t.Run("Should reject a garbage token", func(t *testing.T) {
		m := newTestTokenManager(t)

		_, err := m.Validate("not.a.token")
		assert.ErrorIs(t, err, apperr.InvalidTokenErr)
	})

	t.Run("Should reject a token signed with another key", func(t *testing.T) {
		m := newTestTokenManager(t)
		other, err := NewTokenManager(config.Auth{
			JWTSecret:     "ffffffffffffffffffffffffffffffff",
			TokenLifetime: 30 * time.Minute,
		})
		require.NoError(t, err)

		token, err := other.Issue("alice")
		require.NoError(t, err)

		_, err = m.Validate(token)
		assert.ErrorIs(t, err, apperr.InvalidTokenErr)
	})

	t.Run("Should reject an expired token", func(t *testing.T) {
		m := newTestTokenManager(t)

		issuedAt := time.Now()
		m.timeFunc = func() time.Time { return issuedAt }
		token, err := m.Issue("alice")
		require.NoError(t, err)

		m.timeFunc = func() time.Time { return issuedAt.Add(31 * time.Minute) }
		_, err = m.Validate(token)
		assert.ErrorIs(t, err, apperr.InvalidTokenErr)
	})

	t.Run("Should accept a token just before expiry", func(t *testing.T) {
		m := newTestTokenManager(t)

		issuedAt := time.Now()
		m.timeFunc = func() time.Time { return issuedAt }
		token, err := m.Issue("alice")
		require.NoError(t, err)

		m.timeFunc = func() time.Time { return issuedAt.Add(29 * time.Minute) }
		subject, err := m.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", subject)
	})
}

func TestBcryptHasher(t *testing.T) {
	// Minimum cost keeps the test fast.
	hasher := NewBcryptHasher(4)

	t.Run("Should verify the original password", func(t *testing.T) {
		hash, err := hasher.Hash("s3cret")
		require.NoError(t, err)
		assert.NotEqual(t, "s3cret", hash)
		assert.True(t, hasher.Verify("s3cret", hash))
	})

	t.Run("Should reject a different password", func(t *testing.T) {
		hash, err := hasher.Hash("s3cret")
		require.NoError(t, err)
		assert.False(t, hasher.Verify("s3cret!", hash))
	})
}

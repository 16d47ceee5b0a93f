package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hibikineko/airona-cult/internal/config"
)

func newTestManager(ttl time.Duration) *SessionManager {
	return NewSessionManager(&config.AuthConfig{
		JWTSecret:  "test-secret-do-not-use",
		SessionTTL: ttl,
	})
}

func TestSessionRoundTrip(t *testing.T) {
	m := newTestManager(time.Hour)

	token, err := m.Issue("123456789", "hibiki")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "123456789", claims.DiscordID)
	assert.Equal(t, "hibiki", claims.Username)
}

func TestSessionExpired(t *testing.T) {
	m := newTestManager(-time.Minute)

	token, err := m.Issue("123456789", "hibiki")
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionWrongSecret(t *testing.T) {
	token, err := newTestManager(time.Hour).Issue("123456789", "hibiki")
	require.NoError(t, err)

	other := NewSessionManager(&config.AuthConfig{
		JWTSecret:  "a-different-secret",
		SessionTTL: time.Hour,
	})
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionGarbageToken(t *testing.T) {
	m := newTestManager(time.Hour)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := m.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidSession)
	}
}

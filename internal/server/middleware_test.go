package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hibikineko/airona-cult/internal/auth"
	"github.com/hibikineko/airona-cult/internal/config"
)

func testSessions(t *testing.T) *auth.SessionManager {
	t.Helper()
	return auth.NewSessionManager(&config.AuthConfig{
		JWTSecret:  "middleware-test-secret",
		SessionTTL: time.Hour,
	})
}

func testContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/gacha/stats", nil)
	c.Request.RemoteAddr = "203.0.113.9:4242"
	return c, w
}

// TestLimiterCallerKeysBySession checks that the rate limiter keys
// authenticated requests by Discord ID even though it runs before the
// session middleware.
func TestLimiterCallerKeysBySession(t *testing.T) {
	sessions := testSessions(t)

	token, err := sessions.Issue("555000111", "hibiki")
	require.NoError(t, err)

	t.Run("valid session cookie", func(t *testing.T) {
		c, _ := testContext(t)
		c.Request.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})

		assert.Equal(t, "555000111", limiterCaller(c, sessions))
	})

	t.Run("valid bearer token", func(t *testing.T) {
		c, _ := testContext(t)
		c.Request.Header.Set("Authorization", "Bearer "+token)

		assert.Equal(t, "555000111", limiterCaller(c, sessions))
	})

	t.Run("no token falls back to IP", func(t *testing.T) {
		c, _ := testContext(t)

		assert.Equal(t, "203.0.113.9", limiterCaller(c, sessions))
	})

	t.Run("forged token falls back to IP", func(t *testing.T) {
		other := auth.NewSessionManager(&config.AuthConfig{
			JWTSecret:  "some-other-secret",
			SessionTTL: time.Hour,
		})
		forged, err := other.Issue("555000111", "hibiki")
		require.NoError(t, err)

		c, _ := testContext(t)
		c.Request.AddCookie(&http.Cookie{Name: SessionCookie, Value: forged})

		assert.Equal(t, "203.0.113.9", limiterCaller(c, sessions))
	})
}

func TestRequireSessionRejectsMissingToken(t *testing.T) {
	c, w := testContext(t)

	RequireSession(testSessions(t))(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdminGatesOnConfig(t *testing.T) {
	cfg := &config.Config{Roles: config.RolesConfig{AdminIDs: []string{"admin-1"}}}

	t.Run("admin passes", func(t *testing.T) {
		c, _ := testContext(t)
		c.Set(ctxDiscordID, "admin-1")

		RequireAdmin(cfg)(c)
		assert.False(t, c.IsAborted())
	})

	t.Run("non-admin is rejected", func(t *testing.T) {
		c, w := testContext(t)
		c.Set(ctxDiscordID, "someone-else")

		RequireAdmin(cfg)(c)
		assert.True(t, c.IsAborted())
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

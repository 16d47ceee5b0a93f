package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/hibikineko/airona-cult/internal/auth"
	"github.com/hibikineko/airona-cult/internal/config"
)

// Context keys set by RequireSession for downstream handlers.
const (
	ctxDiscordID = "discord_id"
	ctxUsername  = "username"
)

// SessionCookie is the cookie the session token is carried in. An
// Authorization bearer header is accepted as an alternative.
const SessionCookie = "airona_session"

// RequestLogger logs every request with latency and status.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("HTTP request")
	}
}

// Recovery converts panics into logged 500 responses.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Str("path", c.Request.URL.Path).
					Msg("Handler panicked")
				AbortFail(c, http.StatusInternalServerError, "internal server error")
			}
		}()
		c.Next()
	}
}

// RateLimit enforces a fixed-window per-caller request cap in Redis.
// Authenticated callers are keyed by Discord ID, anonymous ones by IP. The
// limiter runs before RequireSession, so it reads the session token itself
// rather than relying on context values set later in the chain.
func RateLimit(rdb *redis.Client, cfg *config.RateLimitConfig, sessions *auth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := limiterCaller(c, sessions)
		window := time.Now().Unix() / int64(cfg.Window.Seconds())
		key := fmt.Sprintf("ratelimit:%s:%d", caller, window)

		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// Redis being down should not take the API down with it.
			log.Warn().Err(err).Msg("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(c.Request.Context(), key, cfg.Window)
		}

		if count > int64(cfg.Requests) {
			AbortFail(c, http.StatusTooManyRequests, "too many requests")
			return
		}
		c.Next()
	}
}

// limiterCaller derives the rate-limit key: the Discord ID when the request
// carries a valid session token, the client IP otherwise.
func limiterCaller(c *gin.Context, sessions *auth.SessionManager) string {
	if token := sessionToken(c); token != "" {
		if claims, err := sessions.Verify(token); err == nil {
			return claims.DiscordID
		}
	}
	return c.ClientIP()
}

// RequireSession verifies the session token and stores the caller's identity
// on the request context.
func RequireSession(sessions *auth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			AbortFail(c, http.StatusUnauthorized, "authentication required")
			return
		}

		claims, err := sessions.Verify(token)
		if err != nil {
			AbortFail(c, http.StatusUnauthorized, "invalid or expired session")
			return
		}

		c.Set(ctxDiscordID, claims.DiscordID)
		c.Set(ctxUsername, claims.Username)
		c.Next()
	}
}

// RequireAdmin gates a route on the config-driven admin list. Must run after
// RequireSession.
func RequireAdmin(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.IsAdmin(c.GetString(ctxDiscordID)) {
			AbortFail(c, http.StatusForbidden, "admin capability required")
			return
		}
		c.Next()
	}
}

// CallerID returns the authenticated Discord ID set by RequireSession.
func CallerID(c *gin.Context) string {
	return c.GetString(ctxDiscordID)
}

// CallerUsername returns the authenticated username set by RequireSession.
func CallerUsername(c *gin.Context) string {
	return c.GetString(ctxUsername)
}

func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

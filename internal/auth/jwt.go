package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hibikineko/airona-cult/internal/config"
)

// ErrInvalidSession is returned for expired, malformed or forged tokens.
var ErrInvalidSession = errors.New("invalid session token")

// SessionClaims is the payload carried inside a session token.
type SessionClaims struct {
	DiscordID string `json:"discord_id"`
	Username  string `json:"username"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies HS256-signed session tokens.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionManager creates a new SessionManager instance.
func NewSessionManager(cfg *config.AuthConfig) *SessionManager {
	return &SessionManager{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.SessionTTL,
	}
}

// Issue signs a session token for an authenticated Discord user.
func (m *SessionManager) Issue(discordID, username string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		DiscordID: discordID,
		Username:  username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   discordID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns its claims if the signature and expiry
// check out.
func (m *SessionManager) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.DiscordID == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// TTL exposes the configured session lifetime, used for cookie max-age.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

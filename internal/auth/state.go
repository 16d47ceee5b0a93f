package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// stateTTL bounds how long a login attempt may sit between redirect and
// callback.
const stateTTL = 10 * time.Minute

const stateKeyPrefix = "oauth_state:"

// ErrStateMismatch is returned when a callback carries an unknown or already
// consumed state value.
var ErrStateMismatch = errors.New("oauth state mismatch")

// StateStore issues single-use CSRF state values for the OAuth2 flow,
// backed by Redis so any instance can verify a callback.
type StateStore struct {
	rdb *redis.Client
}

// NewStateStore creates a new StateStore instance.
func NewStateStore(rdb *redis.Client) *StateStore {
	return &StateStore{rdb: rdb}
}

// Create mints a fresh state value and records it with a short TTL.
func (s *StateStore) Create(ctx context.Context) (string, error) {
	state := uuid.NewString()
	if err := s.rdb.Set(ctx, stateKeyPrefix+state, "1", stateTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}
	return state, nil
}

// Consume validates and deletes a state value. Each value verifies at most
// once; replays fail with ErrStateMismatch.
func (s *StateStore) Consume(ctx context.Context, state string) error {
	if state == "" {
		return ErrStateMismatch
	}

	deleted, err := s.rdb.Del(ctx, stateKeyPrefix+state).Result()
	if err != nil {
		return fmt.Errorf("failed to check oauth state: %w", err)
	}
	if deleted == 0 {
		return ErrStateMismatch
	}
	return nil
}

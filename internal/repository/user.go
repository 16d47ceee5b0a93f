package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hibikineko/airona-cult/internal/model"
)

// UserRepository handles user account persistence.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(q Querier) *UserRepository {
	return &UserRepository{q: q}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *UserRepository) WithTx(tx pgx.Tx) *UserRepository {
	return &UserRepository{q: tx}
}

const userColumns = "discord_id, username, avatar_url, role, coins, created_at, updated_at"

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.DiscordID,
		&user.Username,
		&user.AvatarURL,
		&user.Role,
		&user.Coins,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert creates the user row if it does not exist and refreshes the profile
// fields if it does. Idempotent; satisfies the foreign-key precondition for
// card and stats writes.
func (r *UserRepository) Upsert(ctx context.Context, discordID, username, avatarURL string) (*model.User, error) {
	const query = `
		INSERT INTO users (discord_id, username, avatar_url, role, coins, created_at, updated_at)
		VALUES ($1, $2, $3, 'member', 0, NOW(), NOW())
		ON CONFLICT (discord_id) DO UPDATE SET
			username = EXCLUDED.username,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = NOW()
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, discordID, username, avatarURL))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by their Discord ID.
// Returns ErrUserNotFound if the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, discordID string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE discord_id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, discordID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// AdjustCoins changes a user's balance by delta, clamping the result at zero.
// Negative results are clamped rather than rejected so admin deductions can
// always zero out a balance. Returns the updated user.
func (r *UserRepository) AdjustCoins(ctx context.Context, discordID string, delta int64) (*model.User, error) {
	const query = `
		UPDATE users
		SET coins = GREATEST(0, coins + $2), updated_at = NOW()
		WHERE discord_id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, discordID, delta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to adjust coins: %w", err)
	}
	return user, nil
}

// SpendCoins deducts exactly amount from the user's balance, returning
// ErrInsufficientCoins if the balance cannot cover it. The WHERE clause makes
// the check-and-deduct a single atomic statement.
func (r *UserRepository) SpendCoins(ctx context.Context, discordID string, amount int64) (*model.User, error) {
	const query = `
		UPDATE users
		SET coins = coins - $2, updated_at = NOW()
		WHERE discord_id = $1 AND coins >= $2
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, discordID, amount))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInsufficientCoins
		}
		return nil, fmt.Errorf("failed to spend coins: %w", err)
	}
	return user, nil
}

// SetRole updates a user's role.
func (r *UserRepository) SetRole(ctx context.Context, discordID, role string) error {
	const query = `
		UPDATE users
		SET role = $2, updated_at = NOW()
		WHERE discord_id = $1
	`

	result, err := r.q.Exec(ctx, query, discordID, role)
	if err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

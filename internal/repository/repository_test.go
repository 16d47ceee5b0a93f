// Package repository tests run against a real PostgreSQL instance via
// testcontainers-go, because the balance clamp and the collection quantity
// floor live in the SQL statements themselves.
package repository

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	err := cmd.Run()
	return err == nil
}

// setupTestDB creates a PostgreSQL container and returns a connection pool.
// Skips the test if Docker is not available.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, applyTestSchema(ctx, pool))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// applyTestSchema creates the tables the repository tests touch, mirroring
// the startup migrations.
func applyTestSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			discord_id VARCHAR(32) PRIMARY KEY,
			username VARCHAR(255) NOT NULL,
			avatar_url TEXT NOT NULL DEFAULT '',
			role VARCHAR(20) NOT NULL DEFAULT 'member',
			coins BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS cards (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			rarity VARCHAR(32) NOT NULL,
			image_url TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_rate_up BOOLEAN NOT NULL DEFAULT FALSE,
			banner VARCHAR(32) NOT NULL DEFAULT 'standard'
		)
	`)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS user_cards (
			user_id VARCHAR(32) NOT NULL REFERENCES users(discord_id) ON DELETE CASCADE,
			card_id BIGINT NOT NULL REFERENCES cards(id),
			quantity INT NOT NULL DEFAULT 1,
			obtained_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			is_daily_draw BOOLEAN NOT NULL DEFAULT TRUE,
			PRIMARY KEY (user_id, card_id)
		)
	`)
	return err
}

// ============================================================================
// UserRepository Tests
// ============================================================================

// TestUserRepository_AdjustCoinsClampsAtZero exercises the GREATEST(0, ...)
// clamp: a deduction larger than the balance zeroes the account, never
// driving it negative.
func TestUserRepository_AdjustCoinsClampsAtZero(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, "10001", "hibiki", "")
	require.NoError(t, err)

	// Grant some coins, then deduct more than the balance holds.
	user, err := repo.AdjustCoins(ctx, "10001", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), user.Coins)

	user, err = repo.AdjustCoins(ctx, "10001", -25)
	require.NoError(t, err)
	assert.Equal(t, int64(0), user.Coins, "balance must clamp at zero")

	// Deducting from an already-empty account stays at zero.
	user, err = repo.AdjustCoins(ctx, "10001", -5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), user.Coins)

	// Partial deductions still work normally.
	_, err = repo.AdjustCoins(ctx, "10001", 10)
	require.NoError(t, err)
	user, err = repo.AdjustCoins(ctx, "10001", -4)
	require.NoError(t, err)
	assert.Equal(t, int64(6), user.Coins)
}

func TestUserRepository_SpendCoinsInsufficientBalance(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, "10002", "hibiki", "")
	require.NoError(t, err)

	_, err = repo.AdjustCoins(ctx, "10002", 3)
	require.NoError(t, err)

	_, err = repo.SpendCoins(ctx, "10002", 5)
	assert.ErrorIs(t, err, ErrInsufficientCoins)

	// The failed spend must not have touched the balance.
	user, err := repo.GetByID(ctx, "10002")
	require.NoError(t, err)
	assert.Equal(t, int64(3), user.Coins)

	user, err = repo.SpendCoins(ctx, "10002", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), user.Coins)
}

// ============================================================================
// CollectionRepository Tests
// ============================================================================

// TestCollectionRepository_RemoveCopiesKeepsLastCopy exercises the
// quantity floor in the UPDATE guard: a removal that would leave fewer than
// one copy fails and changes nothing.
func TestCollectionRepository_RemoveCopiesKeepsLastCopy(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	users := NewUserRepository(pool)
	collection := NewCollectionRepository(pool)
	ctx := context.Background()

	_, err := users.Upsert(ctx, "10003", "hibiki", "")
	require.NoError(t, err)

	var cardID int64
	err = pool.QueryRow(ctx,
		`INSERT INTO cards (name, rarity) VALUES ('Fortune Airona', 'elite') RETURNING id`,
	).Scan(&cardID)
	require.NoError(t, err)

	// Accumulate four copies.
	for i := 0; i < 4; i++ {
		_, _, err = collection.Upsert(ctx, "10003", cardID, true)
		require.NoError(t, err)
	}

	// Removing three of four copies is fine.
	uc, err := collection.RemoveCopies(ctx, "10003", cardID, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, uc.Quantity)

	// Removing the last copy must fail and leave the row untouched.
	_, err = collection.RemoveCopies(ctx, "10003", cardID, 1)
	assert.ErrorIs(t, err, ErrCardNotOwned)

	entry, err := collection.Get(ctx, "10003", cardID)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Quantity)

	// A removal overshooting the floor also fails atomically.
	for i := 0; i < 2; i++ {
		_, _, err = collection.Upsert(ctx, "10003", cardID, true)
		require.NoError(t, err)
	}
	_, err = collection.RemoveCopies(ctx, "10003", cardID, 3)
	assert.ErrorIs(t, err, ErrCardNotOwned)

	entry, err = collection.Get(ctx, "10003", cardID)
	require.NoError(t, err)
	assert.Equal(t, 3, entry.Quantity)
}

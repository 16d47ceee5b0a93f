package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// PityRepository handles the per-user, per-banner pity counters.
type PityRepository struct {
	q Querier
}

// NewPityRepository creates a new PityRepository instance.
func NewPityRepository(q Querier) *PityRepository {
	return &PityRepository{q: q}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *PityRepository) WithTx(tx pgx.Tx) *PityRepository {
	return &PityRepository{q: tx}
}

// Get returns the pity count for a user and banner, zero if absent.
func (r *PityRepository) Get(ctx context.Context, userID, banner string) (int, error) {
	const query = `SELECT count FROM pity_counters WHERE user_id = $1 AND banner = $2`

	var count int
	err := r.q.QueryRow(ctx, query, userID, banner).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get pity counter: %w", err)
	}
	return count, nil
}

// Set upserts the pity count for a user and banner.
func (r *PityRepository) Set(ctx context.Context, userID, banner string, count int) error {
	const query = `
		INSERT INTO pity_counters (user_id, banner, count)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, banner) DO UPDATE SET count = $3
	`

	_, err := r.q.Exec(ctx, query, userID, banner, count)
	if err != nil {
		return fmt.Errorf("failed to set pity counter: %w", err)
	}
	return nil
}

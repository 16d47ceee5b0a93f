package repository

import (
	"context"
	"fmt"

	"github.com/hibikineko/airona-cult/internal/model"
)

// LedgerRepository handles the append-only coin transaction log.
// Callers treat appends as best-effort audit events: a failed append is
// logged and swallowed, never rolled into the balance mutation it describes.
type LedgerRepository struct {
	q Querier
}

// NewLedgerRepository creates a new LedgerRepository instance.
func NewLedgerRepository(q Querier) *LedgerRepository {
	return &LedgerRepository{q: q}
}

// Append writes one ledger entry.
func (r *LedgerRepository) Append(ctx context.Context, userID string, amount int64, txType, reason string) (*model.CoinTransaction, error) {
	const query = `
		INSERT INTO coin_transactions (user_id, amount, type, reason, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, user_id, amount, type, reason, created_at
	`

	var tx model.CoinTransaction
	err := r.q.QueryRow(ctx, query, userID, amount, txType, reason).Scan(
		&tx.ID, &tx.UserID, &tx.Amount, &tx.Type, &tx.Reason, &tx.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return &tx, nil
}

// ListByUser returns a user's ledger entries, newest first.
func (r *LedgerRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.CoinTransaction, error) {
	const query = `
		SELECT id, user_id, amount, type, reason, created_at
		FROM coin_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []model.CoinTransaction
	for rows.Next() {
		var tx model.CoinTransaction
		err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.Type, &tx.Reason, &tx.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %w", err)
	}

	return entries, nil
}

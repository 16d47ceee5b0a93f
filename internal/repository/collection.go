package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hibikineko/airona-cult/internal/model"
)

// ErrCardNotOwned is returned when a collection operation targets a card the
// user does not hold.
var ErrCardNotOwned = errors.New("card not in collection")

// CollectionRepository handles per-user card ownership.
type CollectionRepository struct {
	q Querier
}

// NewCollectionRepository creates a new CollectionRepository instance.
func NewCollectionRepository(q Querier) *CollectionRepository {
	return &CollectionRepository{q: q}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *CollectionRepository) WithTx(tx pgx.Tx) *CollectionRepository {
	return &CollectionRepository{q: tx}
}

// Upsert records a drawn card: first copy inserts the row, repeats increment
// the quantity. Returns the entry after the write and whether it was new.
func (r *CollectionRepository) Upsert(ctx context.Context, userID string, cardID int64, isDailyDraw bool) (*model.UserCard, bool, error) {
	const query = `
		INSERT INTO user_cards (user_id, card_id, quantity, obtained_at, is_daily_draw)
		VALUES ($1, $2, 1, NOW(), $3)
		ON CONFLICT (user_id, card_id) DO UPDATE SET
			quantity = user_cards.quantity + 1
		RETURNING user_id, card_id, quantity, obtained_at, is_daily_draw
	`

	var uc model.UserCard
	err := r.q.QueryRow(ctx, query, userID, cardID, isDailyDraw).Scan(
		&uc.UserID, &uc.CardID, &uc.Quantity, &uc.ObtainedAt, &uc.IsDailyDraw,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert user card: %w", err)
	}
	return &uc, uc.Quantity == 1, nil
}

// Get retrieves a single collection entry.
// Returns ErrCardNotOwned if the user holds no copies.
func (r *CollectionRepository) Get(ctx context.Context, userID string, cardID int64) (*model.UserCard, error) {
	const query = `
		SELECT user_id, card_id, quantity, obtained_at, is_daily_draw
		FROM user_cards
		WHERE user_id = $1 AND card_id = $2
	`

	var uc model.UserCard
	err := r.q.QueryRow(ctx, query, userID, cardID).Scan(
		&uc.UserID, &uc.CardID, &uc.Quantity, &uc.ObtainedAt, &uc.IsDailyDraw,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCardNotOwned
		}
		return nil, fmt.Errorf("failed to get user card: %w", err)
	}
	return &uc, nil
}

// CollectionEntry joins a collection row with its card reference data for
// the collection listing.
type CollectionEntry struct {
	Card     model.Card `json:"card"`
	Quantity int        `json:"quantity"`
}

// ListByUser returns a page of the user's collection with card metadata,
// newest acquisitions first.
func (r *CollectionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]CollectionEntry, error) {
	const query = `
		SELECT c.id, c.name, c.rarity, c.image_url, c.is_active, c.is_rate_up, c.banner, uc.quantity
		FROM user_cards uc
		JOIN cards c ON c.id = uc.card_id
		WHERE uc.user_id = $1
		ORDER BY uc.obtained_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.q.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list collection: %w", err)
	}
	defer rows.Close()

	var entries []CollectionEntry
	for rows.Next() {
		var e CollectionEntry
		err := rows.Scan(
			&e.Card.ID, &e.Card.Name, &e.Card.Rarity, &e.Card.ImageURL,
			&e.Card.IsActive, &e.Card.IsRateUp, &e.Card.Banner, &e.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection: %w", err)
	}

	return entries, nil
}

// RemoveCopies decrements a card's quantity by n, refusing to go below one
// remaining copy. The WHERE clause enforces the floor atomically; callers see
// ErrCardNotOwned when the guard fails.
func (r *CollectionRepository) RemoveCopies(ctx context.Context, userID string, cardID int64, n int) (*model.UserCard, error) {
	const query = `
		UPDATE user_cards
		SET quantity = quantity - $3
		WHERE user_id = $1 AND card_id = $2 AND quantity - $3 >= 1
		RETURNING user_id, card_id, quantity, obtained_at, is_daily_draw
	`

	var uc model.UserCard
	err := r.q.QueryRow(ctx, query, userID, cardID, n).Scan(
		&uc.UserID, &uc.CardID, &uc.Quantity, &uc.ObtainedAt, &uc.IsDailyDraw,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCardNotOwned
		}
		return nil, fmt.Errorf("failed to remove copies: %w", err)
	}
	return &uc, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hibikineko/airona-cult/internal/model"
)

// CardRepository handles fortune card reference data.
type CardRepository struct {
	q Querier
}

// NewCardRepository creates a new CardRepository instance.
func NewCardRepository(q Querier) *CardRepository {
	return &CardRepository{q: q}
}

// ListRarityTiers returns all rarity tiers ordered by descending band width,
// the order the draw engine scans them in.
func (r *CardRepository) ListRarityTiers(ctx context.Context) ([]model.RarityTier, error) {
	const query = `
		SELECT name, min_roll, max_roll, color
		FROM rarity_tiers
		ORDER BY (max_roll - min_roll) DESC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rarity tiers: %w", err)
	}
	defer rows.Close()

	var tiers []model.RarityTier
	for rows.Next() {
		var t model.RarityTier
		if err := rows.Scan(&t.Name, &t.MinRoll, &t.MaxRoll, &t.Color); err != nil {
			return nil, fmt.Errorf("failed to scan rarity tier: %w", err)
		}
		tiers = append(tiers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rarity tiers: %w", err)
	}

	return tiers, nil
}

const cardColumns = "id, name, rarity, image_url, is_active, is_rate_up, banner"

func scanCards(rows pgx.Rows) ([]model.Card, error) {
	defer rows.Close()

	var cards []model.Card
	for rows.Next() {
		var c model.Card
		err := rows.Scan(&c.ID, &c.Name, &c.Rarity, &c.ImageURL, &c.IsActive, &c.IsRateUp, &c.Banner)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}
	return cards, nil
}

// ListActiveByRarity returns all active cards of the given rarity.
func (r *CardRepository) ListActiveByRarity(ctx context.Context, rarity string) ([]model.Card, error) {
	const query = `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE rarity = $1 AND is_active = TRUE
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, rarity)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards by rarity: %w", err)
	}
	return scanCards(rows)
}

// ListRateUp returns the active rate-up cards for a banner, one per rarity
// at most by data convention.
func (r *CardRepository) ListRateUp(ctx context.Context, banner string) ([]model.Card, error) {
	const query = `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE banner = $1 AND is_rate_up = TRUE AND is_active = TRUE
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, banner)
	if err != nil {
		return nil, fmt.Errorf("failed to list rate-up cards: %w", err)
	}
	return scanCards(rows)
}

// GetByID retrieves a card by its ID.
// Returns ErrCardNotFound if the card does not exist.
func (r *CardRepository) GetByID(ctx context.Context, cardID int64) (*model.Card, error) {
	const query = `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`

	var c model.Card
	err := r.q.QueryRow(ctx, query, cardID).Scan(
		&c.ID, &c.Name, &c.Rarity, &c.ImageURL, &c.IsActive, &c.IsRateUp, &c.Banner,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return &c, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hibikineko/airona-cult/internal/model"
)

// StatsRepository handles aggregate draw statistics.
// last_draw_date drives the streak rules; last_free_draw_date drives the
// once-per-UTC-day free draw gate, so coin draws never consume the daily
// allowance.
type StatsRepository struct {
	q Querier
}

// NewStatsRepository creates a new StatsRepository instance.
func NewStatsRepository(q Querier) *StatsRepository {
	return &StatsRepository{q: q}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *StatsRepository) WithTx(tx pgx.Tx) *StatsRepository {
	return &StatsRepository{q: tx}
}

const statsColumns = `user_id, total_draws, cards_collected, daily_streak, longest_streak,
		       COALESCE(last_draw_date, ''), COALESCE(last_free_draw_date, ''), updated_at`

func scanStats(row pgx.Row) (*model.UserStats, error) {
	var s model.UserStats
	err := row.Scan(
		&s.UserID, &s.TotalDraws, &s.CardsCollected,
		&s.DailyStreak, &s.LongestStreak, &s.LastDrawDate, &s.LastFreeDrawDate, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetOrDefault returns the user's stats, or a zero-value snapshot for users
// who have never drawn.
func (r *StatsRepository) GetOrDefault(ctx context.Context, userID string) (*model.UserStats, error) {
	const query = `SELECT ` + statsColumns + ` FROM user_stats WHERE user_id = $1`

	s, err := scanStats(r.q.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &model.UserStats{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return s, nil
}

// RecordDraw upserts the stats row after a draw in one statement: total
// draws, collected count, streak, longest streak and the draw date markers.
// freeDraw additionally stamps the daily-allowance date.
func (r *StatsRepository) RecordDraw(ctx context.Context, userID string, newCard, freeDraw bool, streak int, drawDate string) (*model.UserStats, error) {
	collectedDelta := 0
	if newCard {
		collectedDelta = 1
	}

	const query = `
		INSERT INTO user_stats (user_id, total_draws, cards_collected, daily_streak, longest_streak,
		                        last_draw_date, last_free_draw_date, updated_at)
		VALUES ($1, 1, $2, $3, $3, $4, CASE WHEN $5 THEN $4 ELSE NULL END, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			total_draws = user_stats.total_draws + 1,
			cards_collected = user_stats.cards_collected + $2,
			daily_streak = $3,
			longest_streak = GREATEST(user_stats.longest_streak, $3),
			last_draw_date = $4,
			last_free_draw_date = CASE WHEN $5 THEN $4 ELSE user_stats.last_free_draw_date END,
			updated_at = NOW()
		RETURNING ` + statsColumns

	s, err := scanStats(r.q.QueryRow(ctx, query, userID, collectedDelta, streak, drawDate, freeDraw))
	if err != nil {
		return nil, fmt.Errorf("failed to record draw stats: %w", err)
	}
	return s, nil
}

// ExpireStaleStreaks zeroes the streak of every user whose last draw is
// before the given cutoff date (exclusive). Run by the midnight job so the
// stats endpoint never reports a streak the user has already lost.
func (r *StatsRepository) ExpireStaleStreaks(ctx context.Context, cutoffDate string) (int64, error) {
	const query = `
		UPDATE user_stats
		SET daily_streak = 0, updated_at = NOW()
		WHERE daily_streak > 0 AND last_draw_date < $1
	`

	result, err := r.q.Exec(ctx, query, cutoffDate)
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale streaks: %w", err)
	}
	return result.RowsAffected(), nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/hibikineko/airona-cult/internal/model"
)

// TournamentRepository handles Halloween contest submissions and votes.
type TournamentRepository struct {
	q Querier
}

// NewTournamentRepository creates a new TournamentRepository instance.
func NewTournamentRepository(q Querier) *TournamentRepository {
	return &TournamentRepository{q: q}
}

const submissionColumns = "id, author_name, image_url, is_active, first_place, second_place, third_place"

// ListActiveSubmissions returns all submissions still in the running.
func (r *TournamentRepository) ListActiveSubmissions(ctx context.Context) ([]model.TournamentSubmission, error) {
	const query = `
		SELECT ` + submissionColumns + `
		FROM tournament_submissions
		WHERE is_active = TRUE
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var subs []model.TournamentSubmission
	for rows.Next() {
		var s model.TournamentSubmission
		err := rows.Scan(
			&s.ID, &s.AuthorName, &s.ImageURL, &s.IsActive,
			&s.FirstPlace, &s.SecondPlace, &s.ThirdPlace,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}

	return subs, nil
}

// InsertVote appends one pairwise vote.
func (r *TournamentRepository) InsertVote(ctx context.Context, voterName string, winnerID, loserID int64, matchID string) (*model.VoteRecord, error) {
	const query = `
		INSERT INTO vote_records (voter_name, winner_id, loser_id, match_id, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, voter_name, winner_id, loser_id, match_id, created_at
	`

	var v model.VoteRecord
	err := r.q.QueryRow(ctx, query, voterName, winnerID, loserID, matchID).Scan(
		&v.ID, &v.VoterName, &v.WinnerID, &v.LoserID, &v.MatchID, &v.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert vote: %w", err)
	}
	return &v, nil
}

// ListVotesByVoter returns a voter's full history, oldest first, so a voting
// session can be resumed deterministically.
func (r *TournamentRepository) ListVotesByVoter(ctx context.Context, voterName string) ([]model.VoteRecord, error) {
	const query = `
		SELECT id, voter_name, winner_id, loser_id, match_id, created_at
		FROM vote_records
		WHERE voter_name = $1
		ORDER BY created_at ASC
	`

	rows, err := r.q.Query(ctx, query, voterName)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	var votes []model.VoteRecord
	for rows.Next() {
		var v model.VoteRecord
		err := rows.Scan(&v.ID, &v.VoterName, &v.WinnerID, &v.LoserID, &v.MatchID, &v.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}

	return votes, nil
}

// DeleteVotesByVoter bulk-invalidates a voter's records. The voter's next
// session regenerates matches from an empty history.
func (r *TournamentRepository) DeleteVotesByVoter(ctx context.Context, voterName string) (int64, error) {
	const query = `DELETE FROM vote_records WHERE voter_name = $1`

	result, err := r.q.Exec(ctx, query, voterName)
	if err != nil {
		return 0, fmt.Errorf("failed to delete votes: %w", err)
	}
	return result.RowsAffected(), nil
}

// IncrementPlacement bumps a submission's first/second/third place counter.
// Placement is 1, 2 or 3.
func (r *TournamentRepository) IncrementPlacement(ctx context.Context, submissionID int64, placement int) error {
	var column string
	switch placement {
	case 1:
		column = "first_place"
	case 2:
		column = "second_place"
	case 3:
		column = "third_place"
	default:
		return fmt.Errorf("invalid placement %d", placement)
	}

	query := fmt.Sprintf(`UPDATE tournament_submissions SET %s = %s + 1 WHERE id = $1`, column, column)

	result, err := r.q.Exec(ctx, query, submissionID)
	if err != nil {
		return fmt.Errorf("failed to increment placement: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hibikineko/airona-cult/internal/config"
	"github.com/hibikineko/airona-cult/internal/model"
	"github.com/hibikineko/airona-cult/internal/repository"
	"github.com/hibikineko/airona-cult/internal/tournament"
)

// Validation errors for the Halloween voting flow.
var (
	ErrVoterRequired = errors.New("voter username is required")
	ErrSelfMatch     = errors.New("winner and loser must differ")
	ErrUnknownEntry  = errors.New("submission is not part of the tournament")
	ErrBadPlacement  = errors.New("placement results must name three distinct submissions")
)

// HalloweenService runs the costume contest: submissions, pairwise votes and
// the match generator that decides what to ask each voter next.
type HalloweenService struct {
	repo *repository.TournamentRepository
	cfg  tournament.Config
}

// NewHalloweenService creates a new HalloweenService instance.
func NewHalloweenService(repo *repository.TournamentRepository, cfg *config.TournamentConfig) *HalloweenService {
	return &HalloweenService{
		repo: repo,
		cfg: tournament.Config{
			MaxMatches:     cfg.MaxMatches,
			MinComparisons: cfg.MinComparisons,
			TopN:           cfg.TopN,
			InferenceDepth: cfg.InferenceDepth,
		},
	}
}

// Submissions returns the active contest roster.
func (s *HalloweenService) Submissions(ctx context.Context) ([]model.TournamentSubmission, error) {
	return s.repo.ListActiveSubmissions(ctx)
}

// Votes returns a voter's recorded history, oldest first.
func (s *HalloweenService) Votes(ctx context.Context, voterName string) ([]model.VoteRecord, error) {
	voterName = strings.TrimSpace(voterName)
	if voterName == "" {
		return nil, ErrVoterRequired
	}
	return s.repo.ListVotesByVoter(ctx, voterName)
}

// RecordVote appends one pairwise choice. Both submissions must be active
// roster entries.
func (s *HalloweenService) RecordVote(ctx context.Context, voterName string, winnerID, loserID int64, matchID string) (*model.VoteRecord, error) {
	voterName = strings.TrimSpace(voterName)
	if voterName == "" {
		return nil, ErrVoterRequired
	}
	if winnerID == loserID {
		return nil, ErrSelfMatch
	}

	subs, err := s.repo.ListActiveSubmissions(ctx)
	if err != nil {
		return nil, err
	}
	if !containsSubmission(subs, winnerID) || !containsSubmission(subs, loserID) {
		return nil, ErrUnknownEntry
	}

	return s.repo.InsertVote(ctx, voterName, winnerID, loserID, matchID)
}

// NextMatches rebuilds the voter's history and generates the next batch of
// matchups. The schedule is always re-derived; nothing precomputed is stored.
func (s *HalloweenService) NextMatches(ctx context.Context, voterName string) (*tournament.Result, error) {
	voterName = strings.TrimSpace(voterName)
	if voterName == "" {
		return nil, ErrVoterRequired
	}

	subs, err := s.repo.ListActiveSubmissions(ctx)
	if err != nil {
		return nil, err
	}

	votes, err := s.repo.ListVotesByVoter(ctx, voterName)
	if err != nil {
		return nil, err
	}

	result := tournament.Generate(subs, tournament.NewHistory(votes), s.cfg)

	if len(result.Cycles) > 0 {
		log.Warn().
			Str("voter", voterName).
			Int("cycles", len(result.Cycles)).
			Msg("Voter history contains inconsistent vote cycles")
	}

	return result, nil
}

// RecordResults applies a voter-independent top-3 outcome by bumping the
// stored placement counters. Final ranking is these accumulated counters,
// never a computation over the vote graph.
func (s *HalloweenService) RecordResults(ctx context.Context, top3 []int64) error {
	if len(top3) != 3 || top3[0] == top3[1] || top3[0] == top3[2] || top3[1] == top3[2] {
		return ErrBadPlacement
	}

	for placement, id := range top3 {
		if err := s.repo.IncrementPlacement(ctx, id, placement+1); err != nil {
			return err
		}
	}
	return nil
}

// InvalidateVoter bulk-deletes a voter's records; their next session starts
// from an empty history.
func (s *HalloweenService) InvalidateVoter(ctx context.Context, voterName string) (int64, error) {
	voterName = strings.TrimSpace(voterName)
	if voterName == "" {
		return 0, ErrVoterRequired
	}

	deleted, err := s.repo.DeleteVotesByVoter(ctx, voterName)
	if err != nil {
		return 0, err
	}

	log.Info().
		Str("voter", voterName).
		Int64("deleted", deleted).
		Msg("Voter history invalidated")

	return deleted, nil
}

func containsSubmission(subs []model.TournamentSubmission, id int64) bool {
	for _, s := range subs {
		if s.ID == id {
			return true
		}
	}
	return false
}

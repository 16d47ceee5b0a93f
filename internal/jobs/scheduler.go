// Package jobs runs scheduled maintenance tasks on a cron scheduler.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/hibikineko/airona-cult/internal/gacha"
	"github.com/hibikineko/airona-cult/internal/repository"
)

// Scheduler owns the cron instance and the repositories its jobs touch.
type Scheduler struct {
	cron  *cron.Cron
	stats *repository.StatsRepository
}

// NewScheduler creates a new Scheduler instance. Jobs run in UTC so the
// streak cutoff lines up with the draw gate's calendar day.
func NewScheduler(stats *repository.StatsRepository) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithLocation(time.UTC)),
		stats: stats,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	// Shortly after UTC midnight, reset streaks for users who skipped a day.
	// Reads on stale rows self-heal anyway; the sweep keeps stored state
	// honest for leaderboards and profile views.
	if _, err := s.cron.AddFunc("5 0 * * *", s.expireStreaks); err != nil {
		return err
	}

	s.cron.Start()
	log.Info().Msg("Job scheduler started")
	return nil
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("Job scheduler stopped")
}

func (s *Scheduler) expireStreaks() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Anyone whose last draw is before yesterday has broken their streak.
	cutoff := gacha.Today(time.Now().AddDate(0, 0, -1))

	reset, err := s.stats.ExpireStaleStreaks(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Failed to expire stale streaks")
		return
	}
	log.Info().Int64("reset", reset).Str("cutoff", cutoff).Msg("Expired stale streaks")
}

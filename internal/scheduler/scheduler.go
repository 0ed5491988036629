package scheduler

import (
	"context"
	"fmt"
	"time"

	"slippi-ranks/internal/config"
	"slippi-ranks/internal/constants"
	"slippi-ranks/internal/domain"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

type Refresher interface {
	Refresh(ctx context.Context) (*domain.LeaderboardSnapshot, error)
}

// Scheduler rebuilds the leaderboard on a fixed interval. Runs never overlap; a
// run that would start while the previous one is in flight is skipped.
type Scheduler struct {
	s         gocron.Scheduler
	refresher Refresher
	interval  time.Duration
	logger    zerolog.Logger
}

func NewScheduler(cfg *config.Config, refresher Refresher, logger zerolog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:         s,
		refresher: refresher,
		interval:  cfg.RefreshInterval,
		logger:    logger,
	}, nil
}

func (s *Scheduler) Start() error {
	_, err := s.s.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.refresh),
		gocron.WithName("leaderboard-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to create leaderboard refresh job: %w", err)
	}

	s.s.Start()
	s.logger.Info().Dur("interval", s.interval).Msg("leaderboard refresh scheduled")
	return nil
}

func (s *Scheduler) Stop() error {
	if err := s.s.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	return nil
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), constants.RequestTimeout)
	defer cancel()

	snapshot, err := s.refresher.Refresh(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("scheduled leaderboard refresh failed")
		return
	}
	s.logger.Debug().Str("snapshot_id", snapshot.ID).Msg("scheduled leaderboard refresh done")
}

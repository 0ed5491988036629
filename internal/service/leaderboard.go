package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"slippi-ranks/internal/api"
	"slippi-ranks/internal/config"
	"slippi-ranks/internal/constants"
	"slippi-ranks/internal/domain"
	"slippi-ranks/internal/metrics"
	"slippi-ranks/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "leaderboard"

type SnapshotStore interface {
	Save(ctx context.Context, snapshot *domain.LeaderboardSnapshot) error
	Latest(ctx context.Context) (*domain.LeaderboardSnapshot, error)
	List(ctx context.Context, limit int) ([]domain.LeaderboardSnapshot, error)
}

type LeaderboardService struct {
	fetcher ProfileFetcher
	store   SnapshotStore
	metrics *metrics.Metrics
	logger  zerolog.Logger
	roster  []string
	now     func() time.Time

	inflight singleflight.Group

	mu      sync.RWMutex
	current *domain.LeaderboardSnapshot
}

func NewLeaderboardService(cfg *config.Config, fetcher ProfileFetcher, store SnapshotStore, m *metrics.Metrics, logger zerolog.Logger) *LeaderboardService {
	return &LeaderboardService{
		fetcher: fetcher,
		store:   store,
		metrics: m,
		logger:  logger,
		roster:  append([]string(nil), cfg.Roster...),
		now:     time.Now,
	}
}

func (s *LeaderboardService) Roster() []string {
	return append([]string(nil), s.roster...)
}

// BuildLeaderboard looks up every roster code at once and waits for all of them.
// One failed lookup fails the whole build; no partial leaderboard is returned.
// Equal ratings keep roster order.
func (s *LeaderboardService) BuildLeaderboard(ctx context.Context) ([]domain.PlayerProfile, error) {
	s.logger.Info().Int("roster_size", len(s.roster)).Msg("building leaderboard")

	profiles := make([]domain.PlayerProfile, len(s.roster))

	g, gctx := errgroup.WithContext(ctx)
	for i, code := range s.roster {
		g.Go(func() error {
			profile, err := s.fetcher.FetchProfile(gctx, code)
			if err != nil {
				return err
			}
			profiles[i] = *profile
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("leaderboard build failed")
		return nil, &api.LookupError{Kind: api.KindAggregate, Err: err}
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].Rating > profiles[j].Rating
	})

	return profiles, nil
}

// Refresh builds a new leaderboard and makes it current. On failure the previous
// leaderboard stays current. Concurrent callers share one build.
func (s *LeaderboardService) Refresh(ctx context.Context) (*domain.LeaderboardSnapshot, error) {
	return s.shared(ctx, false)
}

// Current returns the last successful leaderboard, building one if none exists yet.
func (s *LeaderboardService) Current(ctx context.Context) (*domain.LeaderboardSnapshot, error) {
	if current := s.load(); current != nil {
		return current, nil
	}

	s.logger.Debug().Msg("no leaderboard yet, refreshing")
	return s.shared(ctx, true)
}

// Restore makes the newest stored leaderboard current. It does nothing once a
// leaderboard exists, and an empty store is not an error.
func (s *LeaderboardService) Restore(ctx context.Context) error {
	if s.load() != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	snapshot, err := s.store.Latest(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Debug().Msg("no stored leaderboard to restore")
		return nil
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.current == nil {
		s.current = snapshot
	}
	s.mu.Unlock()

	s.logger.Info().Str("snapshot_id", snapshot.ID).Time("taken_at", snapshot.TakenAt).Msg("leaderboard restored")
	return nil
}

func (s *LeaderboardService) load() *domain.LeaderboardSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// shared runs at most one build at a time; callers arriving meanwhile get its
// result. The build ignores the leader's cancellation.
func (s *LeaderboardService) shared(ctx context.Context, reuseCurrent bool) (*domain.LeaderboardSnapshot, error) {
	v, err, _ := s.inflight.Do(refreshKey, func() (any, error) {
		if reuseCurrent {
			if current := s.load(); current != nil {
				return current, nil
			}
		}
		return s.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.LeaderboardSnapshot), nil
}

func (s *LeaderboardService) refresh(ctx context.Context) (*domain.LeaderboardSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	profiles, err := s.BuildLeaderboard(ctx)
	if err != nil {
		s.metrics.ObserveLeaderboardBuild("error", 0, s.now())
		return nil, err
	}

	snapshot := &domain.LeaderboardSnapshot{
		TakenAt: s.now().UTC(),
		Entries: profiles,
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer dbCancel()

	if err := s.store.Save(dbCtx, snapshot); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store leaderboard snapshot")
	}

	s.mu.Lock()
	s.current = snapshot
	s.mu.Unlock()

	s.metrics.ObserveLeaderboardBuild("ok", len(profiles), snapshot.TakenAt)
	s.logger.Info().Str("snapshot_id", snapshot.ID).Int("players", len(profiles)).Msg("leaderboard refreshed")
	return snapshot, nil
}

func (s *LeaderboardService) History(ctx context.Context, limit int) ([]domain.LeaderboardSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if limit <= 0 {
		limit = constants.DefaultHistoryLimit
	}
	if limit > constants.MaxHistoryLimit {
		limit = constants.MaxHistoryLimit
	}

	snapshots, err := s.store.List(ctx, limit)
	if err != nil {
		s.logger.Error().Err(err).Int("limit", limit).Msg("failed to list leaderboard history")
		return nil, err
	}
	return snapshots, nil
}

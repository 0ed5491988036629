package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"slippi-ranks/internal/api"
	"slippi-ranks/internal/config"
	"slippi-ranks/internal/constants"
	"slippi-ranks/internal/domain"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog"
)

var ErrEmptyCode = errors.New("connect code is empty")

type KnownPlayerLister interface {
	KnownPlayers(ctx context.Context) ([]domain.KnownPlayer, error)
}

// SearchService looks up one arbitrary connect code at a time and keeps the outcome
// of the latest search as observable state.
type SearchService struct {
	fetcher ProfileFetcher
	players KnownPlayerLister
	roster  []string
	logger  zerolog.Logger
	now     func() time.Time

	mu         sync.Mutex
	guardStale bool
	generation uint64
	state      domain.SearchState
}

func NewSearchService(cfg *config.Config, fetcher ProfileFetcher, players KnownPlayerLister, logger zerolog.Logger) *SearchService {
	s := &SearchService{
		fetcher:    fetcher,
		players:    players,
		roster:     append([]string(nil), cfg.Roster...),
		logger:     logger,
		now:        time.Now,
		guardStale: true,
	}
	s.state = domain.SearchState{Status: domain.SearchIdle, UpdatedAt: s.now()}
	return s
}

// SetStaleGuard toggles discarding of superseded results. With the guard off,
// whichever overlapping search resolves last decides the state.
func (s *SearchService) SetStaleGuard(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guardStale = enabled
}

// Search clears the previous result, fetches code and records the outcome. The
// caller always receives its own result, even when it no longer becomes the state.
func (s *SearchService) Search(ctx context.Context, code string) (*domain.PlayerProfile, error) {
	code = strings.TrimSpace(code)

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.state = domain.SearchState{Status: domain.SearchSearching, Code: code, UpdatedAt: s.now()}
	s.mu.Unlock()

	s.logger.Info().Str("code", code).Uint64("generation", gen).Msg("searching player")

	var (
		profile *domain.PlayerProfile
		err     error
	)
	if code == "" {
		err = ErrEmptyCode
	} else {
		profile, err = s.fetcher.FetchProfile(ctx, code)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.guardStale && gen != s.generation {
		s.logger.Debug().
			Str("code", code).
			Uint64("generation", gen).
			Uint64("current_generation", s.generation).
			Msg("discarding superseded search result")
		return profile, err
	}

	if err != nil {
		status := domain.SearchFailed
		if errors.Is(err, api.ErrNotFound) {
			status = domain.SearchNotFound
		}
		s.state = domain.SearchState{Status: status, Code: code, Err: err, UpdatedAt: s.now()}
		s.logger.Error().Err(err).Str("code", code).Str("status", string(status)).Msg("search failed")
		return nil, err
	}

	s.state = domain.SearchState{Status: domain.SearchFound, Code: code, Profile: profile, UpdatedAt: s.now()}
	return profile, nil
}

func (s *SearchService) State() domain.SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Suggestions ranks roster codes and players seen in stored leaderboards against a
// partial code or display name.
func (s *SearchService) Suggestions(ctx context.Context, query string) ([]domain.KnownPlayer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.KnownPlayer{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	known, err := s.players.KnownPlayers(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("failed to load known players")
		return nil, err
	}

	candidates := make([]domain.KnownPlayer, 0, len(known)+len(s.roster))
	seen := make(map[string]struct{}, len(known)+len(s.roster))
	for _, p := range known {
		seen[p.Code] = struct{}{}
		candidates = append(candidates, p)
	}
	for _, code := range s.roster {
		if _, ok := seen[code]; !ok {
			candidates = append(candidates, domain.KnownPlayer{Code: code})
		}
	}

	type scored struct {
		player   domain.KnownPlayer
		distance int
	}
	var matches []scored
	for _, p := range candidates {
		best := -1
		for _, target := range []string{p.Code, p.DisplayTag} {
			if target == "" {
				continue
			}
			if d := fuzzy.RankMatchNormalizedFold(query, target); d >= 0 && (best < 0 || d < best) {
				best = d
			}
		}
		if best >= 0 {
			matches = append(matches, scored{player: p, distance: best})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	suggestions := make([]domain.KnownPlayer, 0, constants.SearchSuggestionLimit)
	for _, m := range matches {
		if len(suggestions) == constants.SearchSuggestionLimit {
			break
		}
		suggestions = append(suggestions, m.player)
	}

	s.logger.Info().Int("count", len(suggestions)).Str("query", query).Msg("suggestions computed")
	return suggestions, nil
}

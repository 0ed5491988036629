package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"slippi-ranks/internal/api"
	"slippi-ranks/internal/domain"
	"slippi-ranks/internal/metrics"
	"slippi-ranks/internal/rank"

	"github.com/rs/zerolog"
)

// ConnectCodeClient runs the raw ranking query for one connect code.
type ConnectCodeClient interface {
	GetConnectCode(ctx context.Context, code string) (*api.ConnectCodeResponse, error)
}

// ProfileFetcher returns a freshly normalized profile per call.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, code string) (*domain.PlayerProfile, error)
}

type ProfileService struct {
	slippi  ConnectCodeClient
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewProfileService(slippi ConnectCodeClient, m *metrics.Metrics, logger zerolog.Logger) *ProfileService {
	return &ProfileService{slippi: slippi, metrics: m, logger: logger}
}

// FetchProfile issues exactly one upstream query. Every failure is a *api.LookupError.
func (s *ProfileService) FetchProfile(ctx context.Context, code string) (*domain.PlayerProfile, error) {
	start := time.Now()
	profile, err := s.fetch(ctx, code)

	outcome := "ok"
	if err != nil {
		outcome = api.KindOf(err).String()
	}
	s.metrics.ObserveLookup(outcome, time.Since(start))

	return profile, err
}

func (s *ProfileService) fetch(ctx context.Context, code string) (*domain.PlayerProfile, error) {
	s.logger.Debug().Str("code", code).Msg("fetching profile")

	resp, err := s.slippi.GetConnectCode(ctx, code)
	if err != nil {
		s.logger.Error().Err(err).Str("code", code).Msg("failed to fetch profile")
		return nil, api.NewLookupError(code, err)
	}

	for _, gqlErr := range resp.Errors {
		s.logger.Debug().Str("code", code).Str("graphql_error", gqlErr.Message).Msg("ignoring partial graphql error")
	}

	profile, err := normalizeProfile(code, resp)
	if err != nil {
		s.logger.Warn().Err(err).Str("code", code).Msg("unusable profile response")
		return nil, api.NewLookupError(code, err)
	}

	s.logger.Info().
		Str("code", code).
		Int("rating", profile.Rating).
		Str("tier", profile.TierLabel).
		Msg("profile fetched successfully")
	return profile, nil
}

func normalizeProfile(code string, resp *api.ConnectCodeResponse) (*domain.PlayerProfile, error) {
	lookup := resp.Data.GetConnectCode
	if lookup == nil || lookup.User == nil {
		return nil, fmt.Errorf("%w: %s", api.ErrNotFound, code)
	}
	user := lookup.User

	ranked := user.RankedNetplayProfile
	if ranked == nil {
		return nil, fmt.Errorf("%w: user has no ranked profile", api.ErrMalformedResponse)
	}

	rating := roundRating(ranked.RatingOrdinal)

	characters := make([]string, 0, len(ranked.Characters))
	for _, c := range ranked.Characters {
		characters = append(characters, c.Character)
	}

	return &domain.PlayerProfile{
		DisplayTag:   deref(user.DisplayName),
		Code:         code,
		TierLabel:    rank.TierLabel(rating),
		Rating:       rating,
		Wins:         derefInt(ranked.Wins),
		Losses:       derefInt(ranked.Losses),
		CharacterIDs: characters,
	}, nil
}

// roundRating rounds half up, so 1200.5 becomes 1201 and -0.5 becomes 0.
func roundRating(ordinal *float64) int {
	if ordinal == nil {
		return 0
	}
	return int(math.Floor(*ordinal + 0.5))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

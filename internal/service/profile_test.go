package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"slippi-ranks/internal/api"
	"slippi-ranks/internal/metrics"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userBody(profile string) string {
	return fmt.Sprintf(`{"data": {"getConnectCode": {"user": {"displayName": "Skaht", "rankedNetplayProfile": %s}}}}`, profile)
}

func TestFetchProfile(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		wantRating     int
		wantTier       string
		wantWins       int
		wantLosses     int
		wantCharacters []string
	}{
		{
			name:           "well formed",
			body:           userBody(`{"ratingOrdinal": 1200.6, "wins": 30, "losses": 12, "characters": [{"character": "FOX"}, {"character": "MARTH"}]}`),
			wantRating:     1201,
			wantTier:       "Silver 2",
			wantWins:       30,
			wantLosses:     12,
			wantCharacters: []string{"FOX", "MARTH"},
		},
		{
			name:           "error on the unrelated getUser field",
			body:           `{"data": {"getUser": null, "getConnectCode": {"user": {"displayName": "Skaht", "rankedNetplayProfile": {"ratingOrdinal": 1500.2, "wins": 3, "losses": 1}}}}, "errors": [{"message": "getUser: invalid fbUid"}]}`,
			wantRating:     1500,
			wantTier:       "Gold 1",
			wantWins:       3,
			wantLosses:     1,
			wantCharacters: []string{},
		},
		{
			name:           "wins and losses absent",
			body:           userBody(`{"ratingOrdinal": 765.4, "characters": []}`),
			wantRating:     765,
			wantTier:       "Bronze 1",
			wantCharacters: []string{},
		},
		{
			name:           "wins and losses null",
			body:           userBody(`{"ratingOrdinal": 2349.5, "wins": null, "losses": null}`),
			wantRating:     2350,
			wantTier:       "Master 3 or Grandmaster",
			wantCharacters: []string{},
		},
		{
			name:           "characters null",
			body:           userBody(`{"ratingOrdinal": 1055.0, "wins": 1, "losses": 2, "characters": null}`),
			wantRating:     1055,
			wantTier:       "Silver 1",
			wantWins:       1,
			wantLosses:     2,
			wantCharacters: []string{},
		},
		{
			name:           "rating null",
			body:           userBody(`{"ratingOrdinal": null}`),
			wantRating:     0,
			wantTier:       "Bronze 1",
			wantCharacters: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &FakeConnectCodeClient{GetConnectCodeFunc: respondWith(tt.body)}
			svc := NewProfileService(client, metrics.New(), zerolog.Nop())

			profile, err := svc.FetchProfile(context.Background(), "SKAHT#0")
			require.NoError(t, err)

			assert.Equal(t, "Skaht", profile.DisplayTag)
			assert.Equal(t, "SKAHT#0", profile.Code)
			assert.Equal(t, tt.wantRating, profile.Rating)
			assert.Equal(t, tt.wantTier, profile.TierLabel)
			assert.Equal(t, tt.wantWins, profile.Wins)
			assert.Equal(t, tt.wantLosses, profile.Losses)
			require.NotNil(t, profile.CharacterIDs)
			assert.Equal(t, tt.wantCharacters, profile.CharacterIDs)
		})
	}
}

func TestFetchProfileFailures(t *testing.T) {
	tests := []struct {
		name     string
		client   *FakeConnectCodeClient
		wantKind api.Kind
		wantIs   error
	}{
		{
			name:     "no matching connect code",
			client:   &FakeConnectCodeClient{GetConnectCodeFunc: respondWith(`{"data": {"getConnectCode": null}}`)},
			wantKind: api.KindNotFound,
			wantIs:   api.ErrNotFound,
		},
		{
			name:     "connect code without user",
			client:   &FakeConnectCodeClient{GetConnectCodeFunc: respondWith(`{"data": {"getConnectCode": {"user": null}}}`)},
			wantKind: api.KindNotFound,
			wantIs:   api.ErrNotFound,
		},
		{
			name:     "user without ranked profile",
			client:   &FakeConnectCodeClient{GetConnectCodeFunc: respondWith(`{"data": {"getConnectCode": {"user": {"displayName": "x"}}}}`)},
			wantKind: api.KindMalformed,
			wantIs:   api.ErrMalformedResponse,
		},
		{
			name: "transport failure",
			client: &FakeConnectCodeClient{GetConnectCodeFunc: func(_ context.Context, code string) (*api.ConnectCodeResponse, error) {
				return nil, api.NewLookupError(code, fmt.Errorf("%w: dial tcp: refused", api.ErrNetwork))
			}},
			wantKind: api.KindNetwork,
			wantIs:   api.ErrNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewProfileService(tt.client, metrics.New(), zerolog.Nop())

			profile, err := svc.FetchProfile(context.Background(), "GONE#404")
			require.Error(t, err)
			assert.Nil(t, profile)

			var le *api.LookupError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, "GONE#404", le.Code)
			assert.Equal(t, tt.wantKind, le.Kind)
			assert.ErrorIs(t, err, tt.wantIs)
		})
	}
}

func TestRoundRating(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	assert.Equal(t, 0, roundRating(nil))
	assert.Equal(t, 1201, roundRating(f(1200.5)))
	assert.Equal(t, 1200, roundRating(f(1200.49)))
	assert.Equal(t, 0, roundRating(f(-0.5)))
	assert.Equal(t, -1, roundRating(f(-0.51)))
}

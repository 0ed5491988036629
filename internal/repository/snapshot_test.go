package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"slippi-ranks/internal/database"
	"slippi-ranks/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *SnapshotRepository {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewSnapshotRepository(db, zerolog.Nop())
}

func snapshotAt(at time.Time, entries ...domain.PlayerProfile) *domain.LeaderboardSnapshot {
	return &domain.LeaderboardSnapshot{TakenAt: at, Entries: entries}
}

func TestSaveAndLatest(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	snap := snapshotAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		domain.PlayerProfile{DisplayTag: "Edwin", Code: "EDWIN#0", TierLabel: "Diamond 1", Rating: 2010, Wins: 40, Losses: 10, CharacterIDs: []string{"FOX", "FALCO"}},
		domain.PlayerProfile{DisplayTag: "Pete", Code: "PETE#653", TierLabel: "Silver 2", Rating: 1201},
	)
	require.NoError(t, repo.Save(ctx, snap))
	require.NotEmpty(t, snap.ID)

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)

	assert.Equal(t, snap.ID, latest.ID)
	assert.True(t, snap.TakenAt.Equal(latest.TakenAt))
	require.Len(t, latest.Entries, 2)
	assert.Equal(t, snap.Entries[0], latest.Entries[0])
	assert.Equal(t, "PETE#653", latest.Entries[1].Code)
	assert.Equal(t, []string{}, latest.Entries[1].CharacterIDs)
}

func TestLatestEmpty(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Latest(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		snap := snapshotAt(base.Add(time.Duration(i)*time.Hour),
			domain.PlayerProfile{Code: "SKAHT#0", Rating: 1000 + i})
		require.NoError(t, repo.Save(ctx, snap))
	}

	snaps, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, 1002, snaps[0].Entries[0].Rating)
	assert.Equal(t, 1001, snaps[1].Entries[0].Rating)
}

func TestSaveKeepsGivenID(t *testing.T) {
	repo := newTestRepo(t)
	snap := snapshotAt(time.Now(), domain.PlayerProfile{Code: "A#1"})
	snap.ID = "fixed-id"

	require.NoError(t, repo.Save(context.Background(), snap))
	assert.Equal(t, "fixed-id", snap.ID)

	err := repo.Save(context.Background(), snap)
	assert.Error(t, err, "ids are unique")
}

func TestKnownPlayersUsesLatestTag(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, snapshotAt(base,
		domain.PlayerProfile{Code: "SKAHT#0", DisplayTag: "old name"},
		domain.PlayerProfile{Code: "YARN#567", DisplayTag: "Yarn"},
	)))
	require.NoError(t, repo.Save(ctx, snapshotAt(base.Add(time.Hour),
		domain.PlayerProfile{Code: "SKAHT#0", DisplayTag: "Skaht"},
	)))

	players, err := repo.KnownPlayers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.KnownPlayer{
		{Code: "SKAHT#0", DisplayTag: "Skaht"},
		{Code: "YARN#567", DisplayTag: "Yarn"},
	}, players)
}

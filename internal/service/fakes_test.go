package service

import (
	"context"
	"encoding/json"
	"sync"

	"slippi-ranks/internal/api"
	"slippi-ranks/internal/domain"
	"slippi-ranks/internal/repository"
)

type FakeConnectCodeClient struct {
	GetConnectCodeFunc func(ctx context.Context, code string) (*api.ConnectCodeResponse, error)
}

func (f *FakeConnectCodeClient) GetConnectCode(ctx context.Context, code string) (*api.ConnectCodeResponse, error) {
	return f.GetConnectCodeFunc(ctx, code)
}

// respondWith decodes raw the same way the real client does.
func respondWith(raw string) func(context.Context, string) (*api.ConnectCodeResponse, error) {
	return func(context.Context, string) (*api.ConnectCodeResponse, error) {
		var resp api.ConnectCodeResponse
		if err := json.Unmarshal([]byte(raw), &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	}
}

type FakeProfileFetcher struct {
	FetchProfileFunc func(ctx context.Context, code string) (*domain.PlayerProfile, error)

	mu    sync.Mutex
	calls []string
}

func (f *FakeProfileFetcher) FetchProfile(ctx context.Context, code string) (*domain.PlayerProfile, error) {
	f.mu.Lock()
	f.calls = append(f.calls, code)
	f.mu.Unlock()
	return f.FetchProfileFunc(ctx, code)
}

func (f *FakeProfileFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type FakeSnapshotStore struct {
	SaveFunc   func(ctx context.Context, snapshot *domain.LeaderboardSnapshot) error
	LatestFunc func(ctx context.Context) (*domain.LeaderboardSnapshot, error)
	ListFunc   func(ctx context.Context, limit int) ([]domain.LeaderboardSnapshot, error)

	mu    sync.Mutex
	saved []*domain.LeaderboardSnapshot
}

func (f *FakeSnapshotStore) Save(ctx context.Context, snapshot *domain.LeaderboardSnapshot) error {
	f.mu.Lock()
	f.saved = append(f.saved, snapshot)
	f.mu.Unlock()
	if f.SaveFunc != nil {
		return f.SaveFunc(ctx, snapshot)
	}
	snapshot.ID = "snap-id"
	return nil
}

func (f *FakeSnapshotStore) Latest(ctx context.Context) (*domain.LeaderboardSnapshot, error) {
	if f.LatestFunc != nil {
		return f.LatestFunc(ctx)
	}
	return nil, repository.ErrNotFound
}

func (f *FakeSnapshotStore) Saved() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func (f *FakeSnapshotStore) List(ctx context.Context, limit int) ([]domain.LeaderboardSnapshot, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx, limit)
	}
	return nil, nil
}

type FakeKnownPlayers struct {
	Players []domain.KnownPlayer
	Err     error
}

func (f *FakeKnownPlayers) KnownPlayers(context.Context) ([]domain.KnownPlayer, error) {
	return f.Players, f.Err
}

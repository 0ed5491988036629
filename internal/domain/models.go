package domain

import (
	"time"
)

// PlayerProfile is the normalized result of one ranking lookup. A new value is built
// for every fetch; Code is its stable key within a leaderboard.
type PlayerProfile struct {
	DisplayTag   string
	Code         string
	TierLabel    string
	Rating       int
	Wins         int
	Losses       int
	CharacterIDs []string
}

type LeaderboardSnapshot struct {
	ID      string // nanoid
	TakenAt time.Time
	Entries []PlayerProfile // rating descending
}

type SearchStatus string

const (
	SearchIdle      SearchStatus = "idle"
	SearchSearching SearchStatus = "searching"
	SearchFound     SearchStatus = "found"
	SearchNotFound  SearchStatus = "not_found"
	SearchFailed    SearchStatus = "failed"
)

type SearchState struct {
	Status    SearchStatus
	Code      string
	Profile   *PlayerProfile
	Err       error
	UpdatedAt time.Time
}

// KnownPlayer is a player seen in a stored leaderboard, used for search suggestions.
type KnownPlayer struct {
	Code       string
	DisplayTag string
}

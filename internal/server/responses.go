package server

import (
	"encoding/json"
	"net/http"
	"time"

	"slippi-ranks/internal/domain"
	"slippi-ranks/internal/rank"
)

type PlayerResponse struct {
	DisplayTag string   `json:"display_tag"`
	Code       string   `json:"code"`
	Rank       string   `json:"rank"`
	Rating     int      `json:"rating"`
	Wins       int      `json:"wins"`
	Losses     int      `json:"losses"`
	Characters []string `json:"characters"`
	Style      string   `json:"style"`
}

type LeaderboardResponse struct {
	ID        string           `json:"id,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
	Players   []PlayerResponse `json:"players"`
}

type HistoryResponse struct {
	Snapshots []LeaderboardResponse `json:"snapshots"`
}

type SearchStateResponse struct {
	Status    string          `json:"status"`
	Code      string          `json:"code,omitempty"`
	Player    *PlayerResponse `json:"player,omitempty"`
	Error     string          `json:"error,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type SuggestionResponse struct {
	Code       string `json:"code"`
	DisplayTag string `json:"display_tag,omitempty"`
}

type SuggestionsResponse struct {
	Suggestions []SuggestionResponse `json:"suggestions"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func toPlayerResponse(p domain.PlayerProfile) PlayerResponse {
	characters := p.CharacterIDs
	if characters == nil {
		characters = []string{}
	}
	return PlayerResponse{
		DisplayTag: p.DisplayTag,
		Code:       p.Code,
		Rank:       p.TierLabel,
		Rating:     p.Rating,
		Wins:       p.Wins,
		Losses:     p.Losses,
		Characters: characters,
		Style:      rank.StyleKey(p.Rating),
	}
}

func toLeaderboardResponse(s *domain.LeaderboardSnapshot) LeaderboardResponse {
	players := make([]PlayerResponse, len(s.Entries))
	for i, p := range s.Entries {
		players[i] = toPlayerResponse(p)
	}
	return LeaderboardResponse{ID: s.ID, UpdatedAt: s.TakenAt, Players: players}
}

func toSearchStateResponse(st domain.SearchState) SearchStateResponse {
	resp := SearchStateResponse{
		Status:    string(st.Status),
		Code:      st.Code,
		UpdatedAt: st.UpdatedAt,
	}
	if st.Profile != nil {
		player := toPlayerResponse(*st.Profile)
		resp.Player = &player
	}
	if st.Err != nil {
		resp.Error = st.Err.Error()
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

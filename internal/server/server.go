package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"slippi-ranks/internal/api"
	"slippi-ranks/internal/metrics"
	"slippi-ranks/internal/middleware"
	"slippi-ranks/internal/render"
	"slippi-ranks/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

const LeaderboardTitle = "Epic Ranked Momes!"

type Server struct {
	leaderboard *service.LeaderboardService
	search      *service.SearchService
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

func NewServer(leaderboard *service.LeaderboardService, search *service.SearchService, m *metrics.Metrics, logger zerolog.Logger) *Server {
	return &Server{leaderboard: leaderboard, search: search, metrics: m, logger: logger}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/leaderboard", s.getLeaderboard)
		r.Get("/leaderboard.txt", s.getLeaderboardText)
		r.Post("/leaderboard/refresh", s.refreshLeaderboard)
		r.Get("/leaderboard/history", s.getHistory)
		r.Get("/players/{code}", s.getPlayer)
		r.Get("/search", s.getSearchState)
		r.Get("/search/suggestions", s.getSuggestions)
	})

	return r
}

func (s *Server) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.leaderboard.Current(r.Context())
	if err != nil {
		s.writeLeaderboardError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaderboardResponse(snapshot))
}

func (s *Server) getLeaderboardText(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.leaderboard.Current(r.Context())
	if err != nil {
		s.writeLeaderboardError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := render.Table(w, LeaderboardTitle, snapshot); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to write leaderboard table")
	}
}

func (s *Server) refreshLeaderboard(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.leaderboard.Refresh(r.Context())
	if err != nil {
		s.writeLeaderboardError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaderboardResponse(snapshot))
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	snapshots, err := s.leaderboard.History(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to load leaderboard history"})
		return
	}

	resp := HistoryResponse{Snapshots: make([]LeaderboardResponse, len(snapshots))}
	for i := range snapshots {
		resp.Snapshots[i] = toLeaderboardResponse(&snapshots[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getPlayer(w http.ResponseWriter, r *http.Request) {
	code, err := url.PathUnescape(chi.URLParam(r, "code"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "failed to unescape connect code"})
		return
	}

	profile, err := s.search.Search(r.Context(), code)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, service.ErrEmptyCode):
			status = http.StatusBadRequest
		case errors.Is(err, api.ErrNotFound):
			status = http.StatusNotFound
		}
		writeJSON(w, status, ErrorResponse{Error: err.Error(), Kind: api.KindOf(err).String()})
		return
	}
	writeJSON(w, http.StatusOK, toPlayerResponse(*profile))
}

func (s *Server) getSearchState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSearchStateResponse(s.search.State()))
}

func (s *Server) getSuggestions(w http.ResponseWriter, r *http.Request) {
	players, err := s.search.Suggestions(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to load suggestions"})
		return
	}

	resp := SuggestionsResponse{Suggestions: make([]SuggestionResponse, len(players))}
	for i, p := range players {
		resp.Suggestions[i] = SuggestionResponse{Code: p.Code, DisplayTag: p.DisplayTag}
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeLeaderboardError reports a failed build. A missing roster member is an
// upstream problem here, not a missing resource, so it never maps to 404.
func (s *Server) writeLeaderboardError(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("leaderboard unavailable")
	writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: err.Error(), Kind: api.KindOf(err).String()})
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"contest-ranking/internal/domain"
	"contest-ranking/internal/middleware"
	"contest-ranking/internal/service"
)

// RankingServer exposes the scoreboard and rating surface over JSON.
type RankingServer struct {
	standingSvc    *service.StandingService
	leaderboardSvc *service.LeaderboardService
	ratingSvc      *service.RatingService
	logger         zerolog.Logger
}

func NewRankingServer(standingSvc *service.StandingService, leaderboardSvc *service.LeaderboardService, ratingSvc *service.RatingService, logger zerolog.Logger) *RankingServer {
	return &RankingServer{standingSvc: standingSvc, leaderboardSvc: leaderboardSvc, ratingSvc: ratingSvc, logger: logger}
}

func (s *RankingServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/contests/{id}/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /api/v1/contests/{id}/standings/{userID}", s.handleStanding)
	mux.HandleFunc("POST /api/v1/contests/{id}/standings/recalculate", s.handleRecalculate)
	mux.HandleFunc("POST /api/v1/contests/{id}/ratings/finalize", s.handleFinalize)
	mux.HandleFunc("GET /api/v1/users/{id}/rating", s.handleRatingProfile)
	mux.HandleFunc("GET /api/v1/users/{id}/rating/history", s.handleRatingHistory)
	mux.HandleFunc("GET /api/v1/ratings/leaderboard", s.handleGlobalLeaderboard)
}

func (s *RankingServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	contestID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rows, err := s.leaderboardSvc.GetLeaderboard(r.Context(), contestID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]leaderboardRowDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toLeaderboardRowDTO(row))
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Rows: out})
}

func (s *RankingServer) handleStanding(w http.ResponseWriter, r *http.Request) {
	contestID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	standing, err := s.standingSvc.GetStanding(r.Context(), contestID, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStandingDTO(*standing))
}

func (s *RankingServer) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	contestID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	updated, err := s.standingSvc.RecalculateAllStandings(r.Context(), contestID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationResponse{Updated: updated})
}

func (s *RankingServer) handleFinalize(w http.ResponseWriter, r *http.Request) {
	contestID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	updated, err := s.ratingSvc.FinalizeContestRatings(r.Context(), contestID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationResponse{Updated: updated})
}

func (s *RankingServer) handleRatingProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	profile, err := s.ratingSvc.GetRatingProfile(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(*profile))
}

func (s *RankingServer) handleRatingHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	limit := queryInt(r, "limit", 0)
	history, err := s.ratingSvc.GetRatingHistory(r.Context(), userID, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]ratingChangeDTO, 0, len(history))
	for _, ch := range history {
		out = append(out, toRatingChangeDTO(ch))
	}
	writeJSON(w, http.StatusOK, historyResponse{Changes: out})
}

func (s *RankingServer) handleGlobalLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)
	profiles, err := s.ratingSvc.GlobalLeaderboard(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]profileDTO, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfileDTO(p))
	}
	writeJSON(w, http.StatusOK, globalLeaderboardResponse{Profiles: out})
}

func (s *RankingServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidState):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid " + name})
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

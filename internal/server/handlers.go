package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/kikegomezgit/match-predictor-backend/internal/models"
	"github.com/kikegomezgit/match-predictor-backend/internal/repository"
	syncsvc "github.com/kikegomezgit/match-predictor-backend/internal/sync"
)

type syncRequest struct {
	Years int `json:"years"`
}

// handleStartSync accepts a sync request and returns immediately: 202 when
// the run was launched, 409 when another run holds the lock
func (s *Server) handleStartSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	err := s.syncer.Start(r.Context(), req.Years)
	if errors.Is(err, syncsvc.ErrAlreadyRunning) {
		writeError(w, http.StatusConflict, "a sync is already running")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"message": "sync started"})
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.syncer.Status(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read sync status")
		return
	}
	if status == nil {
		writeError(w, http.StatusNotFound, "no sync status available")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	matches, err := s.matches.ListRecent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list matches")
		writeError(w, http.StatusInternalServerError, "failed to list matches")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"matches": matchResponses(matches),
		"count":   len(matches),
	})
}

func (s *Server) handleUpcomingMatches(w http.ResponseWriter, r *http.Request) {
	leagueID := mux.Vars(r)["leagueID"]

	matches, err := s.syncer.ListUpcoming(r.Context(), leagueID)
	if errors.Is(err, syncsvc.ErrUnsupportedLeague) {
		writeError(w, http.StatusBadRequest, "unsupported league id")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("league", leagueID).Msg("Failed to list upcoming matches")
		writeError(w, http.StatusInternalServerError, "failed to list upcoming matches")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"leagueId": leagueID,
		"matches":  matchResponses(matches),
		"count":    len(matches),
	})
}

func (s *Server) handleLeagueStats(w http.ResponseWriter, r *http.Request) {
	leagueID := mux.Vars(r)["leagueID"]

	season := r.URL.Query().Get("season")
	if season == "" {
		var err error
		season, err = syncsvc.SeasonLabel(leagueID, time.Now().Year())
		if err != nil {
			writeError(w, http.StatusBadRequest, "unsupported league id")
			return
		}
	}

	leagueStats, err := s.stats.ForLeagueSeason(r.Context(), leagueID, season)
	if err != nil {
		log.Error().Err(err).Str("league", leagueID).Msg("Failed to compute stats")
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	writeJSON(w, http.StatusOK, leagueStats)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if s.predictor == nil {
		writeError(w, http.StatusServiceUnavailable, "predictions are not configured")
		return
	}

	eventID := mux.Vars(r)["eventID"]

	prediction, err := s.predictor.ForEvent(r.Context(), eventID)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown event id")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("event", eventID).Msg("Failed to produce prediction")
		writeError(w, http.StatusBadGateway, "failed to produce prediction")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"eventId":     prediction.EventID,
		"model":       prediction.ModelName.String,
		"prediction":  prediction.Text,
		"predictedAt": prediction.PredictedAt,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// matchResponse is the wire shape for a match; nullable columns become
// omittable fields
type matchResponse struct {
	EventID      string                  `json:"eventId"`
	LeagueID     string                  `json:"leagueId"`
	Season       string                  `json:"season"`
	HomeTeam     string                  `json:"homeTeam"`
	AwayTeam     string                  `json:"awayTeam"`
	HomeScore    *string                 `json:"homeScore"`
	AwayScore    *string                 `json:"awayScore"`
	Venue        string                  `json:"venue,omitempty"`
	Kickoff      *time.Time              `json:"kickoff,omitempty"`
	Status       string                  `json:"status"`
	Weather      *models.WeatherSnapshot `json:"weather,omitempty"`
}

func matchResponses(matches []*models.Match) []matchResponse {
	out := make([]matchResponse, 0, len(matches))
	for _, m := range matches {
		resp := matchResponse{
			EventID:  m.EventID,
			LeagueID: m.LeagueID,
			Season:   m.Season,
			HomeTeam: m.HomeTeamName,
			AwayTeam: m.AwayTeamName,
			Status:   m.Status,
			Weather:  m.Weather,
		}
		if m.HomeScore.Valid {
			resp.HomeScore = &m.HomeScore.String
		}
		if m.AwayScore.Valid {
			resp.AwayScore = &m.AwayScore.String
		}
		if m.VenueName.Valid {
			resp.Venue = m.VenueName.String
		}
		if !m.Kickoff.IsZero() {
			kickoff := m.Kickoff
			resp.Kickoff = &kickoff
		}
		out = append(out, resp)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

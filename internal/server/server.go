// Package server exposes the HTTP API: sync control and status, match
// listings, per-league statistics, and match predictions.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/kikegomezgit/match-predictor-backend/internal/models"
	"github.com/kikegomezgit/match-predictor-backend/internal/stats"
)

// SyncService is the orchestrator surface the API exposes
type SyncService interface {
	Start(ctx context.Context, years int) error
	Status(ctx context.Context) (*models.SyncStatus, error)
	ListUpcoming(ctx context.Context, leagueID string) ([]*models.Match, error)
}

// MatchReader lists stored matches for the read endpoints
type MatchReader interface {
	ListRecent(ctx context.Context, limit int) ([]*models.Match, error)
}

// StatsProvider computes per-league aggregates
type StatsProvider interface {
	ForLeagueSeason(ctx context.Context, leagueID, season string) (*stats.LeagueStats, error)
}

// PredictionProvider serves match predictions. May be nil when no
// prediction backend is configured.
type PredictionProvider interface {
	ForEvent(ctx context.Context, eventID string) (*models.Prediction, error)
}

// HealthChecker reports backing-store health
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server is the HTTP API server
type Server struct {
	syncer     SyncService
	matches    MatchReader
	stats      StatsProvider
	predictor  PredictionProvider
	health     HealthChecker
	httpServer *http.Server
}

func NewServer(port int, syncer SyncService, matches MatchReader, statsProvider StatsProvider, predictor PredictionProvider, health HealthChecker) *Server {
	s := &Server{
		syncer:    syncer,
		matches:   matches,
		stats:     statsProvider,
		predictor: predictor,
		health:    health,
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      c.Handler(s.Router()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Router builds the route table. Exposed separately so handler tests can
// drive it without a listening socket.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sync", s.handleStartSync).Methods("POST")
	api.HandleFunc("/sync/status", s.handleSyncStatus).Methods("GET")
	api.HandleFunc("/matches", s.handleListMatches).Methods("GET")
	api.HandleFunc("/matches/upcoming/{leagueID}", s.handleUpcomingMatches).Methods("GET")
	api.HandleFunc("/stats/{leagueID}", s.handleLeagueStats).Methods("GET")
	api.HandleFunc("/predict/{eventID}", s.handlePredict).Methods("GET")

	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return router
}

// Start begins serving. Blocks until the listener fails or Stop is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server starting")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
}

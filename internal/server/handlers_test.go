package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kikegomezgit/match-predictor-backend/internal/models"
	"github.com/kikegomezgit/match-predictor-backend/internal/repository"
	"github.com/kikegomezgit/match-predictor-backend/internal/stats"
	syncsvc "github.com/kikegomezgit/match-predictor-backend/internal/sync"
)

type fakeSyncService struct {
	startErr error
	started  []int
	status   *models.SyncStatus
	upcoming []*models.Match
}

func (f *fakeSyncService) Start(_ context.Context, years int) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = append(f.started, years)
	return nil
}

func (f *fakeSyncService) Status(_ context.Context) (*models.SyncStatus, error) {
	return f.status, nil
}

func (f *fakeSyncService) ListUpcoming(_ context.Context, leagueID string) ([]*models.Match, error) {
	if leagueID == "9999" {
		return nil, syncsvc.ErrUnsupportedLeague
	}
	return f.upcoming, nil
}

type fakeMatchReader struct {
	matches []*models.Match
}

func (f *fakeMatchReader) ListRecent(_ context.Context, limit int) ([]*models.Match, error) {
	if limit < len(f.matches) {
		return f.matches[:limit], nil
	}
	return f.matches, nil
}

type fakeStatsProvider struct {
	stats  *stats.LeagueStats
	season string
}

func (f *fakeStatsProvider) ForLeagueSeason(_ context.Context, leagueID, season string) (*stats.LeagueStats, error) {
	f.season = season
	return f.stats, nil
}

type fakePredictionProvider struct {
	prediction *models.Prediction
	err        error
}

func (f *fakePredictionProvider) ForEvent(_ context.Context, eventID string) (*models.Prediction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.prediction, nil
}

func newTestServer(syncer *fakeSyncService, predictor PredictionProvider) *Server {
	return NewServer(0,
		syncer,
		&fakeMatchReader{},
		&fakeStatsProvider{stats: &stats.LeagueStats{LeagueID: "4328"}},
		predictor,
		nil,
	)
}

func TestHandleStartSync(t *testing.T) {
	syncer := &fakeSyncService{}
	srv := newTestServer(syncer, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/sync", strings.NewReader(`{"years": 3}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []int{3}, syncer.started)
}

func TestHandleStartSync_EmptyBodyUsesDefault(t *testing.T) {
	syncer := &fakeSyncService{}
	srv := newTestServer(syncer, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/sync", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []int{0}, syncer.started, "Zero years lets the orchestrator apply its default")
}

func TestHandleStartSync_Conflict(t *testing.T) {
	syncer := &fakeSyncService{startErr: syncsvc.ErrAlreadyRunning}
	srv := newTestServer(syncer, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/sync", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleStartSync_InvalidYears(t *testing.T) {
	syncer := &fakeSyncService{startErr: errors.New("years to sync must be between 1 and 20, got 99")}
	srv := newTestServer(syncer, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/sync", strings.NewReader(`{"years": 99}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSyncStatus(t *testing.T) {
	syncer := &fakeSyncService{status: &models.SyncStatus{State: models.SyncStateRunning, YearsToSync: 5}}
	srv := newTestServer(syncer, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/sync/status", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var status models.SyncStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, models.SyncStateRunning, status.State)
}

func TestHandleSyncStatus_None(t *testing.T) {
	srv := newTestServer(&fakeSyncService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/sync/status", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleUpcomingMatches(t *testing.T) {
	syncer := &fakeSyncService{upcoming: []*models.Match{
		{
			EventID:      "u1",
			LeagueID:     "4328",
			HomeTeamName: "Arsenal",
			AwayTeamName: "Chelsea",
			Kickoff:      time.Date(2025, 9, 1, 15, 0, 0, 0, time.UTC),
			Status:       models.StatusNotStarted,
			Weather:      &models.WeatherSnapshot{Condition: "Clear"},
		},
	}}
	srv := newTestServer(syncer, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/matches/upcoming/4328", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Matches []matchResponse `json:"matches"`
		Count   int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "Arsenal", body.Matches[0].HomeTeam)
	assert.Nil(t, body.Matches[0].HomeScore, "Unplayed match serializes a null score")
	require.NotNil(t, body.Matches[0].Weather)
	assert.Equal(t, "Clear", body.Matches[0].Weather.Condition)
}

func TestHandleUpcomingMatches_UnsupportedLeague(t *testing.T) {
	srv := newTestServer(&fakeSyncService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/matches/upcoming/9999", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleLeagueStats_DefaultsToCurrentSeason(t *testing.T) {
	statsProvider := &fakeStatsProvider{stats: &stats.LeagueStats{LeagueID: "4346"}}
	srv := NewServer(0, &fakeSyncService{}, &fakeMatchReader{}, statsProvider, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/4346", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	expected, err := syncsvc.SeasonLabel("4346", time.Now().Year())
	require.NoError(t, err)
	assert.Equal(t, expected, statsProvider.season)
}

func TestHandlePredict(t *testing.T) {
	predictor := &fakePredictionProvider{prediction: &models.Prediction{
		EventID:     "2070001",
		Text:        "Narrow home win.",
		PredictedAt: time.Now().UTC(),
	}}
	srv := newTestServer(&fakeSyncService{}, predictor)

	req := httptest.NewRequest(http.MethodGet, "/api/predict/2070001", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Narrow home win.", body["prediction"])
}

func TestHandlePredict_UnknownEvent(t *testing.T) {
	predictor := &fakePredictionProvider{err: repository.ErrNotFound}
	srv := newTestServer(&fakeSyncService{}, predictor)

	req := httptest.NewRequest(http.MethodGet, "/api/predict/nope", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlePredict_NotConfigured(t *testing.T) {
	srv := newTestServer(&fakeSyncService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/predict/2070001", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&fakeSyncService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

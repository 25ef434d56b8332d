// Package sync implements the reconciliation loop at the heart of the
// system: season by season, league by league, it pulls match lists from the
// sports provider, enriches each match with venue coordinates and a weather
// snapshot, and upserts the result. A distributed lock tracker guarantees at
// most one run at a time across processes.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kikegomezgit/match-predictor-backend/internal/geo"
	"github.com/kikegomezgit/match-predictor-backend/internal/metrics"
	"github.com/kikegomezgit/match-predictor-backend/internal/models"
	"github.com/kikegomezgit/match-predictor-backend/internal/synclock"
)

// ErrAlreadyRunning is returned when a sync is requested while one holds the lock
var ErrAlreadyRunning = synclock.ErrLockHeld

const (
	minYearsToSync = 1
	maxYearsToSync = 20
)

// Provider is the sports data surface the orchestrator consumes. Season
// listing errors propagate; upcoming listing degrades to an empty slice.
type Provider interface {
	ListSeasonMatches(ctx context.Context, leagueID, season string) ([]models.EventInput, error)
	ListUpcomingMatches(ctx context.Context, leagueID string) []models.EventInput
}

// MatchStore is the persistence surface for match records
type MatchStore interface {
	Upsert(ctx context.Context, match *models.Match) (bool, error)
	CountByLeagueSeason(ctx context.Context, leagueID, season string) (int, error)
}

// WeatherFetcher resolves a point-in-time weather snapshot; nil means no data
type WeatherFetcher interface {
	Fetch(ctx context.Context, lat, lon float64, at time.Time) *models.WeatherSnapshot
}

// VenueResolver turns a venue reference into coordinates; nil means unresolvable
type VenueResolver interface {
	Resolve(ctx context.Context, venueID, venueName string) *geo.Point
}

// LockTracker brackets the run and publishes its progress
type LockTracker interface {
	Acquire(ctx context.Context, status models.SyncStatus) (string, error)
	UpdateProgress(ctx context.Context, token string, update func(*models.SyncStatus)) error
	Release(ctx context.Context, token string, final models.SyncStatus) error
	Status(ctx context.Context) (*models.SyncStatus, error)
}

// Service drives sync runs and the enriched upcoming-match read path
type Service struct {
	provider Provider
	store    MatchStore
	weather  WeatherFetcher
	venues   VenueResolver
	tracker  LockTracker

	leagues      []League
	defaultYears int

	nowFn func() time.Time
}

func NewService(provider Provider, store MatchStore, weather WeatherFetcher, venues VenueResolver, tracker LockTracker, defaultYears int) *Service {
	if defaultYears < minYearsToSync || defaultYears > maxYearsToSync {
		defaultYears = 5
	}
	return &Service{
		provider:     provider,
		store:        store,
		weather:      weather,
		venues:       venues,
		tracker:      tracker,
		leagues:      DefaultLeagues,
		defaultYears: defaultYears,
		nowFn:        time.Now,
	}
}

// Start validates the request, takes the lock, and launches the
// reconciliation loop in the background. It returns as soon as the lock is
// held; progress and the terminal result are only observable through Status.
// Returns ErrAlreadyRunning when another run owns the lock.
func (s *Service) Start(ctx context.Context, years int) error {
	if years == 0 {
		years = s.defaultYears
	}
	if years < minYearsToSync || years > maxYearsToSync {
		return fmt.Errorf("years to sync must be between %d and %d, got %d", minYearsToSync, maxYearsToSync, years)
	}

	token, err := s.tracker.Acquire(ctx, models.SyncStatus{
		StartedAt:   s.nowFn().UTC(),
		YearsToSync: years,
	})
	if err != nil {
		return err
	}

	go s.run(token, years)
	return nil
}

// Run is the synchronous variant used by the one-shot CLI: same lock, same
// loop, but the caller waits for the terminal result.
func (s *Service) Run(ctx context.Context, years int) error {
	if years == 0 {
		years = s.defaultYears
	}
	if years < minYearsToSync || years > maxYearsToSync {
		return fmt.Errorf("years to sync must be between %d and %d, got %d", minYearsToSync, maxYearsToSync, years)
	}

	token, err := s.tracker.Acquire(ctx, models.SyncStatus{
		StartedAt:   s.nowFn().UTC(),
		YearsToSync: years,
	})
	if err != nil {
		return err
	}

	return s.supervise(ctx, token, years)
}

// Status returns the current or most recent run's published status
func (s *Service) Status(ctx context.Context) (*models.SyncStatus, error) {
	return s.tracker.Status(ctx)
}

// ListUpcoming returns the provider's forward-looking fixtures for a league,
// enriched with venue coordinates and weather, without writing any match
// records. Newly discovered venue coordinates are still cached.
func (s *Service) ListUpcoming(ctx context.Context, leagueID string) ([]*models.Match, error) {
	league, ok := s.league(leagueID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLeague, leagueID)
	}

	events := s.provider.ListUpcomingMatches(ctx, league.ID)

	matches := make([]*models.Match, 0, len(events))
	for i := range events {
		event := &events[i]
		match := event.ToMatch(league.ID, event.Season)
		s.enrich(ctx, match)
		matches = append(matches, match)
	}
	return matches, nil
}

// run is the supervised background task behind Start. Whatever happens —
// success, season failure, panic — the lock is released and a terminal
// status published.
func (s *Service) run(token string, years int) {
	// Detached from the request context: the HTTP caller is long gone
	if err := s.supervise(context.Background(), token, years); err != nil {
		log.Error().Err(err).Msg("Sync run failed")
	}
}

func (s *Service) supervise(ctx context.Context, token string, years int) (runErr error) {
	start := s.nowFn()
	result := &models.SyncResult{}

	defer func() {
		if r := recover(); r != nil {
			runErr = fmt.Errorf("sync panicked: %v", r)
			log.Error().Interface("panic", r).Msg("Sync run panicked")
		}

		elapsed := s.nowFn().Sub(start)
		final := models.SyncStatus{
			StartedAt:   start.UTC(),
			YearsToSync: years,
			State:       models.SyncStateCompleted,
			Result:      result,
		}
		completedAt := s.nowFn().UTC()
		final.CompletedAt = &completedAt

		outcome := "completed"
		if runErr != nil {
			final.State = models.SyncStateError
			final.Error = runErr.Error()
			outcome = "error"
		}

		if err := s.tracker.Release(ctx, token, final); err != nil {
			log.Error().Err(err).Msg("Failed to release sync lock")
		}
		metrics.RecordSyncRun(outcome, elapsed.Seconds())

		log.Info().
			Str("state", final.State).
			Dur("elapsed", elapsed).
			Int("total", result.Total).
			Int("synced", result.Synced).
			Int("updated", result.Updated).
			Int("failed", result.Failed).
			Int("seasons_skipped", result.SeasonsSkipped).
			Msg("Sync run finished")
	}()

	for _, league := range s.leagues {
		if err := s.tracker.UpdateProgress(ctx, token, func(status *models.SyncStatus) {
			status.CurrentLeague = league.ID
			status.CurrentLeagueName = league.Name
		}); err != nil {
			log.Warn().Err(err).Msg("Failed to publish sync progress")
		}

		leagueResult, err := s.syncLeague(ctx, league, years)
		result.Add(leagueResult)
		if err != nil {
			return fmt.Errorf("league %s: %w", league.ID, err)
		}
	}

	return nil
}

// syncLeague reconciles one league, newest season first. A season listing
// failure aborts the league (and the run); everything below it degrades.
func (s *Service) syncLeague(ctx context.Context, league League, years int) (models.LeagueSyncResult, error) {
	result := models.LeagueSyncResult{LeagueID: league.ID, LeagueName: league.Name}
	currentYear := s.nowFn().Year()

	for i := 0; i <= years; i++ {
		year := currentYear - i
		season, err := SeasonLabel(league.ID, year)
		if err != nil {
			return result, err
		}

		// Past seasons are immutable once any data exists; only the
		// current season is always re-fetched
		if year != currentYear {
			count, err := s.store.CountByLeagueSeason(ctx, league.ID, season)
			if err != nil {
				return result, err
			}
			if count > 0 {
				result.SeasonsSkipped++
				log.Debug().Str("league", league.ID).Str("season", season).Msg("Season already synced, skipping")
				continue
			}
		}

		events, err := s.provider.ListSeasonMatches(ctx, league.ID, season)
		if err != nil {
			return result, fmt.Errorf("season %s: %w", season, err)
		}

		log.Info().
			Str("league", league.Name).
			Str("season", season).
			Int("matches", len(events)).
			Msg("Syncing season")

		for j := range events {
			s.processEvent(ctx, league, season, &events[j], &result)
		}
	}

	return result, nil
}

// processEvent enriches and upserts one match. Failures are counted and
// logged; they never abort the season.
func (s *Service) processEvent(ctx context.Context, league League, season string, event *models.EventInput, result *models.LeagueSyncResult) {
	result.Total++

	match := event.ToMatch(league.ID, season)
	if match.EventID == "" {
		result.Failed++
		metrics.RecordMatchSynced(league.ID, "failed")
		log.Warn().Str("league", league.ID).Str("season", season).Msg("Event without id, skipping")
		return
	}

	s.enrich(ctx, match)

	inserted, err := s.store.Upsert(ctx, match)
	if err != nil {
		result.Failed++
		metrics.RecordMatchSynced(league.ID, "failed")
		log.Warn().Err(err).Str("event", match.EventID).Msg("Failed to upsert match")
		return
	}

	if inserted {
		result.Synced++
		metrics.RecordMatchSynced(league.ID, "inserted")
	} else {
		result.Updated++
		metrics.RecordMatchSynced(league.ID, "updated")
	}
}

// enrich resolves the venue and, when coordinates exist, attaches a weather
// snapshot for the kickoff time. Both steps degrade silently.
func (s *Service) enrich(ctx context.Context, match *models.Match) {
	point := s.venues.Resolve(ctx, match.VenueID.String, match.VenueName.String)
	if point == nil || match.Kickoff.IsZero() {
		return
	}
	match.Weather = s.weather.Fetch(ctx, point.Lat, point.Lon, match.Kickoff)
}

func (s *Service) league(id string) (League, bool) {
	for _, league := range s.leagues {
		if league.ID == id {
			return league, true
		}
	}
	return League{}, false
}

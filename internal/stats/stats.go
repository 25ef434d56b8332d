// Package stats computes per-league/season aggregates over stored matches.
// Results are cached in the shared key-value store so repeated dashboard
// polls don't hammer the database.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kikegomezgit/match-predictor-backend/internal/cache"
	"github.com/kikegomezgit/match-predictor-backend/internal/models"
)

// MatchLister is the read surface the aggregator needs
type MatchLister interface {
	ListByLeagueSeason(ctx context.Context, leagueID, season string) ([]*models.Match, error)
}

// ResponseCache is a best-effort cache; errors degrade to recomputation
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// LeagueStats is the aggregate for one league/season pair
type LeagueStats struct {
	LeagueID string `json:"leagueId"`
	Season   string `json:"season"`

	Played    int `json:"played"`
	Finished  int `json:"finished"`
	Postponed int `json:"postponed"`

	HomeWins int `json:"homeWins"`
	AwayWins int `json:"awayWins"`
	Draws    int `json:"draws"`

	HomeGoals  int `json:"homeGoals"`
	AwayGoals  int `json:"awayGoals"`
	TotalGoals int `json:"totalGoals"`

	// WithWeather counts matches carrying a weather snapshot
	WithWeather int `json:"withWeather"`
}

// Service computes and caches league statistics
type Service struct {
	store MatchStoreReader
	cache ResponseCache
	ttl   time.Duration
}

// MatchStoreReader aliases the lister for constructor readability
type MatchStoreReader = MatchLister

func NewService(store MatchStoreReader, responseCache ResponseCache, ttl time.Duration) *Service {
	return &Service{store: store, cache: responseCache, ttl: ttl}
}

// ForLeagueSeason returns the aggregate for a league/season, serving from
// cache when a fresh entry exists
func (s *Service) ForLeagueSeason(ctx context.Context, leagueID, season string) (*LeagueStats, error) {
	key := cacheKey(leagueID, season)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var cached LeagueStats
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
			log.Warn().Str("key", key).Msg("Discarding undecodable cached stats")
		} else if !errors.Is(err, cache.ErrMiss) {
			log.Warn().Err(err).Msg("Stats cache read failed")
		}
	}

	matches, err := s.store.ListByLeagueSeason(ctx, leagueID, season)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches for stats: %w", err)
	}

	stats := Compute(leagueID, season, matches)

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
				log.Warn().Err(err).Msg("Stats cache write failed")
			}
		}
	}

	return stats, nil
}

// Compute tallies one league/season's matches
func Compute(leagueID, season string, matches []*models.Match) *LeagueStats {
	stats := &LeagueStats{LeagueID: leagueID, Season: season}

	for _, match := range matches {
		if match.Weather != nil {
			stats.WithWeather++
		}

		switch {
		case match.IsPostponed():
			stats.Postponed++
			continue
		case !match.IsFinished():
			continue
		}

		stats.Played++
		stats.Finished++

		home, okHome := score(match.HomeScore.String, match.HomeScore.Valid)
		away, okAway := score(match.AwayScore.String, match.AwayScore.Valid)
		if !okHome || !okAway {
			// Finished match without parseable scores; counted as played only
			continue
		}

		stats.HomeGoals += home
		stats.AwayGoals += away
		stats.TotalGoals += home + away

		switch {
		case home > away:
			stats.HomeWins++
		case away > home:
			stats.AwayWins++
		default:
			stats.Draws++
		}
	}

	return stats
}

func score(raw string, valid bool) (int, bool) {
	if !valid {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func cacheKey(leagueID, season string) string {
	return "stats:" + leagueID + ":" + season
}

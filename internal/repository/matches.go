package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/kikegomezgit/match-predictor-backend/internal/metrics"
	"github.com/kikegomezgit/match-predictor-backend/internal/models"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("repository: not found")

// MatchRepository handles match database operations
type MatchRepository struct {
	db *Database
}

const matchColumns = `
	id, event_id, league_id, season,
	home_team_id, away_team_id, home_team_name, away_team_name,
	home_score, away_score, venue_id, venue_name,
	kickoff, status, weather, created_at, updated_at
`

// Upsert inserts or updates a match keyed by its external event id. Returns
// true when a new row was inserted, false when an existing row was updated.
func (r *MatchRepository) Upsert(ctx context.Context, match *models.Match) (bool, error) {
	weather, err := marshalWeather(match.Weather)
	if err != nil {
		return false, err
	}

	query := `
		INSERT INTO matches (
			event_id, league_id, season,
			home_team_id, away_team_id, home_team_name, away_team_name,
			home_score, away_score, venue_id, venue_name,
			kickoff, status, weather
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (event_id) DO UPDATE SET
			league_id = EXCLUDED.league_id,
			season = EXCLUDED.season,
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			home_team_name = EXCLUDED.home_team_name,
			away_team_name = EXCLUDED.away_team_name,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			venue_id = EXCLUDED.venue_id,
			venue_name = EXCLUDED.venue_name,
			kickoff = EXCLUDED.kickoff,
			status = EXCLUDED.status,
			weather = COALESCE(EXCLUDED.weather, matches.weather),
			updated_at = NOW()
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted
	`

	var inserted bool
	err = r.db.Pool.QueryRow(
		ctx, query,
		match.EventID, match.LeagueID, match.Season,
		match.HomeTeamID, match.AwayTeamID, match.HomeTeamName, match.AwayTeamName,
		match.HomeScore, match.AwayScore, match.VenueID, match.VenueName,
		match.Kickoff, match.Status, weather,
	).Scan(&match.ID, &match.CreatedAt, &match.UpdatedAt, &inserted)

	if err != nil {
		metrics.RecordDBQuery("upsert", "matches", "error")
		return false, fmt.Errorf("failed to upsert match: %w", err)
	}
	metrics.RecordDBQuery("upsert", "matches", "ok")

	return inserted, nil
}

// GetByEventID retrieves a match by its external event id
func (r *MatchRepository) GetByEventID(ctx context.Context, eventID string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE event_id = $1`

	match, err := scanMatch(r.db.Pool.QueryRow(ctx, query, eventID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("match %s: %w", eventID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return match, nil
}

// CountByLeagueSeason counts stored matches for a league/season pair. The
// sync loop uses this to decide whether a past season can be skipped.
func (r *MatchRepository) CountByLeagueSeason(ctx context.Context, leagueID, season string) (int, error) {
	query := `SELECT COUNT(*) FROM matches WHERE league_id = $1 AND season = $2`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, leagueID, season).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}

	return count, nil
}

// CountByEventID counts rows holding a given event id. Upsert-by-natural-key
// keeps this at most 1.
func (r *MatchRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	query := `SELECT COUNT(*) FROM matches WHERE event_id = $1`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, eventID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}

	return count, nil
}

// ListByLeagueSeason retrieves all matches for a league/season pair in
// kickoff order
func (r *MatchRepository) ListByLeagueSeason(ctx context.Context, leagueID, season string) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + `
		FROM matches
		WHERE league_id = $1 AND season = $2
		ORDER BY kickoff`

	rows, err := r.db.Pool.Query(ctx, query, leagueID, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

// ListRecent retrieves the most recently played matches across all leagues
func (r *MatchRepository) ListRecent(ctx context.Context, limit int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + `
		FROM matches
		ORDER BY kickoff DESC
		LIMIT $1`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent matches: %w", err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

// Count returns the total number of stored matches
func (r *MatchRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM matches`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}

func collectMatches(rows pgx.Rows) ([]*models.Match, error) {
	var matches []*models.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}

	log.Debug().Int("count", len(matches)).Msg("Retrieved matches")
	return matches, nil
}

func scanMatch(row pgx.Row) (*models.Match, error) {
	var match models.Match
	var weather []byte

	err := row.Scan(
		&match.ID, &match.EventID, &match.LeagueID, &match.Season,
		&match.HomeTeamID, &match.AwayTeamID, &match.HomeTeamName, &match.AwayTeamName,
		&match.HomeScore, &match.AwayScore, &match.VenueID, &match.VenueName,
		&match.Kickoff, &match.Status, &weather, &match.CreatedAt, &match.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(weather) > 0 {
		var snapshot models.WeatherSnapshot
		if err := json.Unmarshal(weather, &snapshot); err != nil {
			return nil, fmt.Errorf("failed to decode weather snapshot: %w", err)
		}
		match.Weather = &snapshot
	}

	return &match, nil
}

func marshalWeather(snapshot *models.WeatherSnapshot) ([]byte, error) {
	if snapshot == nil {
		return nil, nil
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode weather snapshot: %w", err)
	}
	return raw, nil
}

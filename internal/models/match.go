package models

import (
	"database/sql"
	"time"
)

// Match statuses as reported by TheSportsDB
const (
	StatusFinished   = "Match Finished"
	StatusNotStarted = "Not Started"
	StatusPostponed  = "Postponed"
)

// Match represents a football match. EventID is the provider's event id and
// the natural key for upserts: exactly one stored record per event regardless
// of how many times sync runs.
type Match struct {
	ID       int    `db:"id"`
	EventID  string `db:"event_id"`
	LeagueID string `db:"league_id"`
	Season   string `db:"season"`

	HomeTeamID   sql.NullString `db:"home_team_id"`
	AwayTeamID   sql.NullString `db:"away_team_id"`
	HomeTeamName string         `db:"home_team_name"`
	AwayTeamName string         `db:"away_team_name"`

	// Scores are nullable strings: nil means "not yet played", "0" is a
	// real score.
	HomeScore sql.NullString `db:"home_score"`
	AwayScore sql.NullString `db:"away_score"`

	VenueID   sql.NullString `db:"venue_id"`
	VenueName sql.NullString `db:"venue_name"`

	Kickoff time.Time `db:"kickoff"`
	Status  string    `db:"status"`

	// Weather is the enrichment snapshot for the kickoff time, stored as
	// JSONB. Nil when no weather data could be resolved.
	Weather *WeatherSnapshot `db:"weather"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// EventInput is the raw event shape returned by TheSportsDB
type EventInput struct {
	EventID      string `json:"idEvent"`
	LeagueID     string `json:"idLeague"`
	Season       string `json:"strSeason"`
	HomeTeamID   string `json:"idHomeTeam"`
	AwayTeamID   string `json:"idAwayTeam"`
	HomeTeamName string `json:"strHomeTeam"`
	AwayTeamName string `json:"strAwayTeam"`
	HomeScore    string `json:"intHomeScore"`
	AwayScore    string `json:"intAwayScore"`
	VenueID      string `json:"idVenue"`
	VenueName    string `json:"strVenue"`
	Timestamp    string `json:"strTimestamp"` // ISO 8601
	Status       string `json:"strStatus"`
}

// ToMatch converts EventInput (from API) to Match model.
// LeagueID and Season from the sync loop take precedence over the payload
// fields, which the provider sometimes leaves empty.
func (ei *EventInput) ToMatch(leagueID, season string) *Match {
	match := &Match{
		EventID:      ei.EventID,
		LeagueID:     leagueID,
		Season:       season,
		HomeTeamName: ei.HomeTeamName,
		AwayTeamName: ei.AwayTeamName,
		Status:       ei.Status,
	}

	if ei.HomeTeamID != "" {
		match.HomeTeamID = sql.NullString{String: ei.HomeTeamID, Valid: true}
	}
	if ei.AwayTeamID != "" {
		match.AwayTeamID = sql.NullString{String: ei.AwayTeamID, Valid: true}
	}

	// Empty score means the match has not been played; "0" is a real score
	if ei.HomeScore != "" {
		match.HomeScore = sql.NullString{String: ei.HomeScore, Valid: true}
	}
	if ei.AwayScore != "" {
		match.AwayScore = sql.NullString{String: ei.AwayScore, Valid: true}
	}

	if ei.VenueID != "" {
		match.VenueID = sql.NullString{String: ei.VenueID, Valid: true}
	}
	if ei.VenueName != "" {
		match.VenueName = sql.NullString{String: ei.VenueName, Valid: true}
	}

	if kickoff, err := time.Parse(time.RFC3339, ei.Timestamp); err == nil {
		match.Kickoff = kickoff
	}

	return match
}

// IsFinished returns true if the match has been played to completion
func (m *Match) IsFinished() bool {
	return m.Status == StatusFinished
}

// IsPostponed returns true if the match was postponed
func (m *Match) IsPostponed() bool {
	return m.Status == StatusPostponed
}

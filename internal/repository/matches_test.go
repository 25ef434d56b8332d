//go:build integration

package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kikegomezgit/match-predictor-backend/internal/models"
)

func testMatch(eventID string) *models.Match {
	return &models.Match{
		EventID:      eventID,
		LeagueID:     "4328",
		Season:       "2024-2025",
		HomeTeamName: "Arsenal",
		AwayTeamName: "Chelsea",
		HomeTeamID:   sql.NullString{String: "133604", Valid: true},
		AwayTeamID:   sql.NullString{String: "133610", Valid: true},
		VenueID:      sql.NullString{String: "16163", Valid: true},
		VenueName:    sql.NullString{String: "Emirates Stadium", Valid: true},
		Kickoff:      time.Date(2024, 11, 10, 16, 30, 0, 0, time.UTC),
		Status:       models.StatusNotStarted,
	}
}

func TestMatchRepository_Upsert(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	match := testMatch("2070001")

	inserted, err := db.Matches.Upsert(ctx, match)
	require.NoError(t, err, "Should insert match")
	assert.True(t, inserted, "First write should report an insert")

	retrieved, err := db.Matches.GetByEventID(ctx, "2070001")
	require.NoError(t, err, "Should retrieve match")
	assert.Equal(t, "4328", retrieved.LeagueID)
	assert.Equal(t, "Arsenal", retrieved.HomeTeamName)
	assert.False(t, retrieved.HomeScore.Valid, "Unplayed match has no score")

	// Same event comes back finished with scores
	match.Status = models.StatusFinished
	match.HomeScore = sql.NullString{String: "2", Valid: true}
	match.AwayScore = sql.NullString{String: "1", Valid: true}

	inserted, err = db.Matches.Upsert(ctx, match)
	require.NoError(t, err, "Should update match")
	assert.False(t, inserted, "Second write should report an update")

	updated, err := db.Matches.GetByEventID(ctx, "2070001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, updated.Status)
	assert.Equal(t, "2", updated.HomeScore.String)

	count, err := db.Matches.CountByEventID(ctx, "2070001")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "Re-syncing an event must never create a second row")
}

func TestMatchRepository_WeatherSurvivesResync(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	match := testMatch("2070002")
	match.Weather = &models.WeatherSnapshot{
		TempC:        8.4,
		Humidity:     81,
		VisibilityKM: 10,
		Condition:    "Rain",
		Lat:          51.555,
		Lon:          -0.108,
		ComputedFor:  match.Kickoff,
	}

	_, err := db.Matches.Upsert(ctx, match)
	require.NoError(t, err)

	// A later sync pass without weather (provider degraded) must not erase
	// the stored snapshot
	bare := testMatch("2070002")
	_, err = db.Matches.Upsert(ctx, bare)
	require.NoError(t, err)

	retrieved, err := db.Matches.GetByEventID(ctx, "2070002")
	require.NoError(t, err)
	require.NotNil(t, retrieved.Weather, "Weather snapshot should survive a bare resync")
	assert.Equal(t, "Rain", retrieved.Weather.Condition)
	assert.InDelta(t, 8.4, retrieved.Weather.TempC, 0.001)
}

func TestMatchRepository_CountByLeagueSeason(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	for i, eventID := range []string{"2080001", "2080002", "2080003"} {
		match := testMatch(eventID)
		match.LeagueID = "4346"
		match.Season = "2023"
		match.Kickoff = match.Kickoff.Add(time.Duration(i) * 24 * time.Hour)
		_, err := db.Matches.Upsert(ctx, match)
		require.NoError(t, err)
	}

	count, err := db.Matches.CountByLeagueSeason(ctx, "4346", "2023")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = db.Matches.CountByLeagueSeason(ctx, "4346", "2022")
	require.NoError(t, err)
	assert.Equal(t, 0, count, "Empty season counts zero")

	matches, err := db.Matches.ListByLeagueSeason(ctx, "4346", "2023")
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.True(t, matches[0].Kickoff.Before(matches[1].Kickoff), "Listing is kickoff-ordered")
}

func TestMatchRepository_GetByEventID_NotFound(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, err := db.Matches.GetByEventID(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

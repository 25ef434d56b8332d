//go:build integration

package repository

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kikegomezgit/match-predictor-backend/internal/models"
)

func TestVenueRepository_Upsert(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	venue := &models.Venue{
		VenueID:  "16163",
		Name:     "Emirates Stadium",
		City:     sql.NullString{String: "London", Valid: true},
		Country:  sql.NullString{String: "England", Valid: true},
		Capacity: sql.NullInt32{Int32: 60704, Valid: true},
		Lat:      sql.NullFloat64{Float64: 51.555, Valid: true},
		Lon:      sql.NullFloat64{Float64: -0.108, Valid: true},
	}

	require.NoError(t, db.Venues.Upsert(ctx, venue))

	retrieved, err := db.Venues.GetByVenueID(ctx, "16163")
	require.NoError(t, err)
	assert.Equal(t, "Emirates Stadium", retrieved.Name)
	assert.True(t, retrieved.HasCoordinates())
	assert.InDelta(t, 51.555, retrieved.Lat.Float64, 0.0001)
}

func TestVenueRepository_CoordinatesAreSticky(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	venue := &models.Venue{
		VenueID: "19999",
		Name:    "Q2 Stadium",
		Lat:     sql.NullFloat64{Float64: 30.3877, Valid: true},
		Lon:     sql.NullFloat64{Float64: -97.7195, Valid: true},
	}
	require.NoError(t, db.Venues.Upsert(ctx, venue))

	// A later provider response without coordinates must not clear them
	bare := &models.Venue{VenueID: "19999", Name: "Q2 Stadium"}
	require.NoError(t, db.Venues.Upsert(ctx, bare))

	retrieved, err := db.Venues.GetByVenueID(ctx, "19999")
	require.NoError(t, err)
	assert.True(t, retrieved.HasCoordinates(), "Resolved coordinates are cached permanently")
	assert.InDelta(t, 30.3877, retrieved.Lat.Float64, 0.0001)
}

func TestVenueRepository_FindByIDOrName(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	venue := &models.Venue{VenueID: "17777", Name: "Estadio Azteca"}
	require.NoError(t, db.Venues.Upsert(ctx, venue))

	byID, err := db.Venues.FindByIDOrName(ctx, "17777", "")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "Estadio Azteca", byID.Name)

	byName, err := db.Venues.FindByIDOrName(ctx, "", "Estadio Azteca")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, "17777", byName.VenueID)

	// Unknown id falls back to name
	fallback, err := db.Venues.FindByIDOrName(ctx, "0", "Estadio Azteca")
	require.NoError(t, err)
	require.NotNil(t, fallback)
	assert.Equal(t, "17777", fallback.VenueID)

	missing, err := db.Venues.FindByIDOrName(ctx, "0", "Nowhere Park")
	require.NoError(t, err)
	assert.Nil(t, missing, "Unknown venue resolves to nil without error")
}

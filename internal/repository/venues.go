package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kikegomezgit/match-predictor-backend/internal/metrics"
	"github.com/kikegomezgit/match-predictor-backend/internal/models"
)

// VenueRepository handles venue database operations
type VenueRepository struct {
	db *Database
}

const venueColumns = `
	id, venue_id, name, city, country, capacity, surface,
	location, lat, lon, created_at, updated_at
`

// Upsert inserts or updates a venue keyed by its external venue id. Resolved
// coordinates are never overwritten with nulls: once a venue holds valid
// coordinates they are cached permanently.
func (r *VenueRepository) Upsert(ctx context.Context, venue *models.Venue) error {
	query := `
		INSERT INTO venues (
			venue_id, name, city, country, capacity, surface, location, lat, lon
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (venue_id) DO UPDATE SET
			name = EXCLUDED.name,
			city = COALESCE(EXCLUDED.city, venues.city),
			country = COALESCE(EXCLUDED.country, venues.country),
			capacity = COALESCE(EXCLUDED.capacity, venues.capacity),
			surface = COALESCE(EXCLUDED.surface, venues.surface),
			location = COALESCE(EXCLUDED.location, venues.location),
			lat = COALESCE(EXCLUDED.lat, venues.lat),
			lon = COALESCE(EXCLUDED.lon, venues.lon),
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		venue.VenueID, venue.Name, venue.City, venue.Country,
		venue.Capacity, venue.Surface, venue.Location, venue.Lat, venue.Lon,
	).Scan(&venue.ID, &venue.CreatedAt, &venue.UpdatedAt)

	if err != nil {
		metrics.RecordDBQuery("upsert", "venues", "error")
		return fmt.Errorf("failed to upsert venue: %w", err)
	}
	metrics.RecordDBQuery("upsert", "venues", "ok")

	return nil
}

// GetByVenueID retrieves a venue by its external venue id
func (r *VenueRepository) GetByVenueID(ctx context.Context, venueID string) (*models.Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues WHERE venue_id = $1`
	return r.getOne(ctx, query, venueID)
}

// GetByName retrieves a venue by its exact name
func (r *VenueRepository) GetByName(ctx context.Context, name string) (*models.Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues WHERE name = $1`
	return r.getOne(ctx, query, name)
}

// FindByIDOrName looks a venue up by external id first, then by name. Either
// argument may be empty. Returns nil without error when nothing matches.
func (r *VenueRepository) FindByIDOrName(ctx context.Context, venueID, name string) (*models.Venue, error) {
	if venueID != "" {
		venue, err := r.GetByVenueID(ctx, venueID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if venue != nil {
			return venue, nil
		}
	}

	if name != "" {
		venue, err := r.GetByName(ctx, name)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return venue, nil
	}

	return nil, nil
}

// Count returns the total number of stored venues
func (r *VenueRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM venues`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count venues: %w", err)
	}
	return count, nil
}

func (r *VenueRepository) getOne(ctx context.Context, query string, arg any) (*models.Venue, error) {
	var venue models.Venue
	err := r.db.Pool.QueryRow(ctx, query, arg).Scan(
		&venue.ID, &venue.VenueID, &venue.Name, &venue.City, &venue.Country,
		&venue.Capacity, &venue.Surface, &venue.Location,
		&venue.Lat, &venue.Lon, &venue.CreatedAt, &venue.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("venue: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}
	return &venue, nil
}

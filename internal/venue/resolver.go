package venue

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/kikegomezgit/match-predictor-backend/internal/geo"
	"github.com/kikegomezgit/match-predictor-backend/internal/models"
)

// Store is the venue persistence surface the resolver needs
type Store interface {
	FindByIDOrName(ctx context.Context, venueID, name string) (*models.Venue, error)
	Upsert(ctx context.Context, venue *models.Venue) error
}

// Searcher looks a venue up at the provider by name. A nil result means the
// provider had nothing usable; the resolver degrades rather than fails.
type Searcher interface {
	SearchVenue(ctx context.Context, name string) *models.VenueInput
}

// Resolver turns a match's venue reference into coordinates. Results are
// cached in the venue store: a venue that already holds coordinates is never
// re-fetched, and a venue that resolved without coordinates is only retried
// when retryNoCoords is set.
type Resolver struct {
	store         Store
	searcher      Searcher
	retryNoCoords bool
}

func NewResolver(store Store, searcher Searcher, retryNoCoords bool) *Resolver {
	return &Resolver{
		store:         store,
		searcher:      searcher,
		retryNoCoords: retryNoCoords,
	}
}

// Resolve returns the coordinates for a venue, or nil when none can be
// determined. Resolution failures never propagate; a match without
// coordinates simply gets no weather.
func (r *Resolver) Resolve(ctx context.Context, venueID, venueName string) *geo.Point {
	if venueID == "" && venueName == "" {
		return nil
	}

	stored, err := r.store.FindByIDOrName(ctx, venueID, venueName)
	if err != nil {
		log.Warn().Err(err).Str("venue", venueName).Msg("Venue lookup failed")
		return nil
	}

	if stored != nil {
		if stored.HasCoordinates() {
			return &geo.Point{Lat: stored.Lat.Float64, Lon: stored.Lon.Float64}
		}
		if !r.retryNoCoords {
			// Known venue with no resolvable coordinates; don't burn
			// provider quota retrying it every sync
			return nil
		}
	}

	if venueName == "" {
		return nil
	}

	input := r.searcher.SearchVenue(ctx, venueName)
	if input == nil {
		return nil
	}

	point, found := r.extractPoint(input)

	venue := input.ToVenue()
	if found {
		venue.Lat = sql.NullFloat64{Float64: point.Lat, Valid: true}
		venue.Lon = sql.NullFloat64{Float64: point.Lon, Valid: true}
	}

	// Persist even without coordinates so the next run short-circuits
	if err := r.store.Upsert(ctx, venue); err != nil {
		log.Warn().Err(err).Str("venue", venue.Name).Msg("Failed to store venue")
	}

	if !found {
		log.Debug().Str("venue", input.Name).Msg("No coordinates resolvable for venue")
		return nil
	}
	return &point
}

// extractPoint tries the raw map string first, then the provider's explicit
// latitude/longitude fields.
func (r *Resolver) extractPoint(input *models.VenueInput) (geo.Point, bool) {
	if point, ok := geo.Extract(input.Map); ok {
		return point, true
	}

	if input.Latitude != "" && input.Longitude != "" {
		lat, errLat := strconv.ParseFloat(input.Latitude, 64)
		lon, errLon := strconv.ParseFloat(input.Longitude, 64)
		if errLat == nil && errLon == nil {
			if point, ok := geo.FromDecimal(lat, lon); ok {
				return point, true
			}
		}
	}

	return geo.Point{}, false
}

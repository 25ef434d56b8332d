package models

import (
	"database/sql"
	"time"
)

// Venue represents a match venue. VenueID is the provider's venue id and the
// natural key for upserts. Once Lat/Lon are resolved they are cached
// permanently; re-sync does not re-run the geocoding path for a venue that
// already holds valid coordinates.
type Venue struct {
	ID       int            `db:"id"`
	VenueID  string         `db:"venue_id"`
	Name     string         `db:"name"`
	City     sql.NullString `db:"city"`
	Country  sql.NullString `db:"country"`
	Capacity sql.NullInt32  `db:"capacity"`
	Surface  sql.NullString `db:"surface"`

	// Location is the provider's raw map/location string the coordinate
	// extractor runs against
	Location sql.NullString `db:"location"`

	Lat sql.NullFloat64 `db:"lat"`
	Lon sql.NullFloat64 `db:"lon"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// HasCoordinates returns true if the venue holds resolved coordinates
func (v *Venue) HasCoordinates() bool {
	return v.Lat.Valid && v.Lon.Valid
}

// VenueInput is the raw venue shape returned by TheSportsDB venue search
type VenueInput struct {
	VenueID  string `json:"idVenue"`
	Name     string `json:"strVenue"`
	City     string `json:"strLocation"`
	Country  string `json:"strCountry"`
	Capacity string `json:"intCapacity"`
	Surface  string `json:"strSurface"`
	Map      string `json:"strMap"`
	// Some venues carry explicit coordinates instead of a parseable map string
	Latitude  string `json:"strLatitude"`
	Longitude string `json:"strLongitude"`
}

// ToVenue converts VenueInput (from API) to Venue model. Coordinates are not
// set here; the resolver decides them from the map string or the explicit
// latitude/longitude fields.
func (vi *VenueInput) ToVenue() *Venue {
	venue := &Venue{
		VenueID: vi.VenueID,
		Name:    vi.Name,
	}

	if vi.City != "" {
		venue.City = sql.NullString{String: vi.City, Valid: true}
	}
	if vi.Country != "" {
		venue.Country = sql.NullString{String: vi.Country, Valid: true}
	}
	if capacity := parseCapacity(vi.Capacity); capacity > 0 {
		venue.Capacity = sql.NullInt32{Int32: capacity, Valid: true}
	}
	if vi.Surface != "" {
		venue.Surface = sql.NullString{String: vi.Surface, Valid: true}
	}
	if vi.Map != "" {
		venue.Location = sql.NullString{String: vi.Map, Valid: true}
	}

	return venue
}

func parseCapacity(raw string) int32 {
	var capacity int32
	for _, r := range raw {
		if r < '0' || r > '9' {
			// Providers format capacity as "99,354" or with stray text
			continue
		}
		capacity = capacity*10 + int32(r-'0')
	}
	return capacity
}

package models

import "time"

// WeatherSnapshot holds a point-in-time weather observation resolved for a
// match venue. It is embedded on the match record; a nil snapshot means the
// enrichment was unavailable when the match was synced.
type WeatherSnapshot struct {
	TempC        float64 `json:"temp_c"`
	FeelsLikeC   float64 `json:"feels_like_c"`
	Humidity     int     `json:"humidity"`     // percentage
	Pressure     int     `json:"pressure"`     // hPa
	VisibilityKM float64 `json:"visibility_km"`
	WindSpeed    float64 `json:"wind_speed"` // m/s
	WindDeg      int     `json:"wind_deg"`
	Clouds       int     `json:"clouds"` // cloud cover percentage

	Condition   string `json:"condition"`   // e.g. "Rain"
	Description string `json:"description"` // e.g. "light rain"
	Icon        string `json:"icon"`

	// Coordinates and timestamp the snapshot was computed for
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	ComputedFor time.Time `json:"computed_for"`
}

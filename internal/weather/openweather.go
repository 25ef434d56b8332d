// Package weather resolves point-in-time weather snapshots from the
// OpenWeatherMap timemachine API. Enrichment is best-effort: every failure
// path degrades to a nil snapshot so a weather outage never aborts match
// synchronization.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kikegomezgit/match-predictor-backend/internal/metrics"
	"github.com/kikegomezgit/match-predictor-backend/internal/models"
)

// Client is the OpenWeatherMap historical weather client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new weather client. An empty API key is allowed; every
// fetch then degrades to nil.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// timemachineResponse is the One Call timemachine payload shape
type timemachineResponse struct {
	Data []struct {
		Dt         int64   `json:"dt"`
		Temp       float64 `json:"temp"`
		FeelsLike  float64 `json:"feels_like"`
		Pressure   int     `json:"pressure"`
		Humidity   int     `json:"humidity"`
		Clouds     int     `json:"clouds"`
		Visibility int     `json:"visibility"` // meters
		WindSpeed  float64 `json:"wind_speed"`
		WindDeg    int     `json:"wind_deg"`
		Weather    []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
	} `json:"data"`
}

// Fetch resolves the weather at the given coordinates and time. It returns
// nil on any failure (missing API key, network error, malformed response)
// after logging; callers treat nil as "no weather data".
func (c *Client) Fetch(ctx context.Context, lat, lon float64, at time.Time) *models.WeatherSnapshot {
	if c.apiKey == "" {
		log.Debug().Msg("Weather API key not configured, skipping enrichment")
		metrics.RecordWeatherFetch("skipped")
		return nil
	}

	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%.6f", lat))
	q.Set("lon", fmt.Sprintf("%.6f", lon))
	q.Set("dt", fmt.Sprintf("%d", at.Unix()))
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create weather request")
		metrics.RecordWeatherFetch("error")
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("Weather request failed")
		metrics.RecordWeatherFetch("error")
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		log.Warn().
			Err(err).
			Int("status", resp.StatusCode).
			Msg("Weather API returned an unusable response")
		metrics.RecordWeatherFetch("error")
		return nil
	}

	var parsed timemachineResponse
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Data) == 0 {
		log.Warn().Err(err).Msg("Malformed weather response")
		metrics.RecordWeatherFetch("error")
		return nil
	}

	entry := parsed.Data[0]
	snapshot := &models.WeatherSnapshot{
		TempC:        entry.Temp,
		FeelsLikeC:   entry.FeelsLike,
		Humidity:     entry.Humidity,
		Pressure:     entry.Pressure,
		VisibilityKM: float64(entry.Visibility) / 1000,
		WindSpeed:    entry.WindSpeed,
		WindDeg:      entry.WindDeg,
		Clouds:       entry.Clouds,
		Lat:          lat,
		Lon:          lon,
		ComputedFor:  at,
	}

	// The provider returns a list of weather categories; the first entry is
	// the primary condition
	if len(entry.Weather) > 0 {
		snapshot.Condition = entry.Weather[0].Main
		snapshot.Description = entry.Weather[0].Description
		snapshot.Icon = entry.Weather[0].Icon
	}

	metrics.RecordWeatherFetch("ok")
	return snapshot
}

package client

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

// Client is the TheSportsDB API client. Every call goes through the shared
// rate counter before hitting the network and records against it afterwards.
//
// Failure semantics are asymmetric on purpose: venue and upcoming-match
// lookups are best-effort enrichment and degrade to empty results, while
// season listings propagate errors because a silently empty season would
// corrupt completeness tracking in the sync loop.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *RateCounter
}

// NewClient creates a new TheSportsDB API client sharing the given rate counter
func NewClient(baseURL, apiKey string, timeout time.Duration, limiter *RateCounter) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		limiter: limiter,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// get performs a rate-limited GET request against the provider
func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait interrupted: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, c.apiKey, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := url.Values{}
	for key, value := range params {
		q.Set(key, value)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.limiter.Record()
	if err != nil {
		metrics.RecordAPICall(path, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordAPICall(path, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.RecordAPICall(path, fmt.Sprintf("%d", resp.StatusCode), time.Since(start).Seconds())
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	metrics.RecordAPICall(path, "ok", time.Since(start).Seconds())

	log.Debug().
		Str("path", path).
		Int("size", len(body)).
		Dur("duration", time.Since(start)).
		Msg("API request successful")

	return body, nil
}

type eventsResponse struct {
	Events []models.EventInput `json:"events"`
}

type venuesResponse struct {
	Venues []models.VenueInput `json:"venues"`
}

// ListSeasonMatches fetches all events for a league season. Errors propagate
// to the caller: the sync loop must know a season failed.
func (c *Client) ListSeasonMatches(ctx context.Context, leagueID, season string) ([]models.EventInput, error) {
	body, err := c.get(ctx, "eventsseason.php", map[string]string{
		"id": leagueID,
		"s":  season,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch season %s for league %s: %w", season, leagueID, err)
	}

	var parsed eventsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal season events: %w", err)
	}

	return parsed.Events, nil
}

// ListUpcomingMatches fetches the next scheduled events for a league.
// Failures degrade to an empty list.
func (c *Client) ListUpcomingMatches(ctx context.Context, leagueID string) []models.EventInput {
	body, err := c.get(ctx, "eventsnextleague.php", map[string]string{"id": leagueID})
	if err != nil {
		log.Warn().Err(err).Str("league_id", leagueID).Msg("Failed to fetch upcoming matches")
		return nil
	}

	var parsed eventsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		log.Warn().Err(err).Str("league_id", leagueID).Msg("Failed to unmarshal upcoming matches")
		return nil
	}

	return parsed.Events
}

// SearchVenue looks up a venue by name. Failures and not-found both degrade
// to nil: venue data is best-effort enrichment.
func (c *Client) SearchVenue(ctx context.Context, name string) *models.VenueInput {
	body, err := c.get(ctx, "searchvenues.php", map[string]string{"t": name})
	if err != nil {
		log.Warn().Err(err).Str("venue", name).Msg("Venue search failed")
		return nil
	}

	var parsed venuesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		log.Warn().Err(err).Str("venue", name).Msg("Failed to unmarshal venue search")
		return nil
	}

	if len(parsed.Venues) == 0 {
		log.Debug().Str("venue", name).Msg("Venue not found")
		return nil
	}

	return &parsed.Venues[0]
}

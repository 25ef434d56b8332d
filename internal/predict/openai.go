// Package predict generates natural-language match predictions through an
// OpenAI-style chat-completions API. Unlike the enrichment clients, provider
// failures here propagate: a prediction endpoint with nothing to say should
// fail loudly rather than fabricate.
package predict

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kikegomezgit/match-predictor-backend/internal/models"
)

// ErrNoAPIKey is returned at construction when no credentials are configured
var ErrNoAPIKey = errors.New("predict: no API key configured")

const defaultBaseURL = "https://api.openai.com/v1"

// Client calls the chat-completions endpoint
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Predict produces a prediction for a match from its stored record and
// weather snapshot
func (c *Client) Predict(ctx context.Context, match *models.Match) (*models.Prediction, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a football analyst. Give a short, grounded prediction for the match described. Two or three sentences."},
			{Role: "user", Content: prompt(match)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prediction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("prediction API returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode prediction response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return nil, errors.New("prediction API returned no choices")
	}

	log.Debug().Str("event", match.EventID).Msg("Generated match prediction")

	return &models.Prediction{
		EventID:     match.EventID,
		ModelName:   nullString(c.model),
		Text:        parsed.Choices[0].Message.Content,
		PredictedAt: time.Now().UTC(),
	}, nil
}

// prompt renders the match facts the model predicts from. Weather is
// included only when a snapshot exists.
func prompt(match *models.Match) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s vs %s", match.HomeTeamName, match.AwayTeamName)
	if match.VenueName.Valid {
		fmt.Fprintf(&buf, " at %s", match.VenueName.String)
	}
	if !match.Kickoff.IsZero() {
		fmt.Fprintf(&buf, ", kickoff %s", match.Kickoff.Format("2006-01-02 15:04 MST"))
	}
	fmt.Fprintf(&buf, ". Status: %s.", match.Status)
	if match.Weather != nil {
		fmt.Fprintf(&buf, " Forecast: %s, %.1f°C, wind %.1f m/s, humidity %d%%.",
			match.Weather.Condition, match.Weather.TempC, match.Weather.WindSpeed, match.Weather.Humidity)
	}
	return buf.String()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

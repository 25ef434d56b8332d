package predict

import (
	"context"
	"errors"
	"fmt"

	"github.com/kikegomezgit/match-predictor-backend/internal/models"
	"github.com/kikegomezgit/match-predictor-backend/internal/repository"
)

// MatchGetter loads the match a prediction is generated from
type MatchGetter interface {
	GetByEventID(ctx context.Context, eventID string) (*models.Match, error)
}

// PredictionStore persists generated predictions
type PredictionStore interface {
	Upsert(ctx context.Context, prediction *models.Prediction) error
	GetByEventID(ctx context.Context, eventID string) (*models.Prediction, error)
}

// Predictor is the generation backend, normally *Client
type Predictor interface {
	Predict(ctx context.Context, match *models.Match) (*models.Prediction, error)
}

// Service serves predictions, generating and storing one the first time a
// match is asked about
type Service struct {
	matches     MatchGetter
	predictions PredictionStore
	predictor   Predictor
}

func NewService(matches MatchGetter, predictions PredictionStore, predictor Predictor) *Service {
	return &Service{matches: matches, predictions: predictions, predictor: predictor}
}

// ForEvent returns the stored prediction for a match, generating one on the
// first request. Unknown event ids surface repository.ErrNotFound.
func (s *Service) ForEvent(ctx context.Context, eventID string) (*models.Prediction, error) {
	existing, err := s.predictions.GetByEventID(ctx, eventID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	match, err := s.matches.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	prediction, err := s.predictor.Predict(ctx, match)
	if err != nil {
		return nil, fmt.Errorf("failed to generate prediction: %w", err)
	}

	if err := s.predictions.Upsert(ctx, prediction); err != nil {
		return nil, err
	}
	return prediction, nil
}

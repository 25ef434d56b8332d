package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kikegomezgit/match-predictor-backend/internal/models"
)

// PredictionRepository handles stored natural-language match predictions
type PredictionRepository struct {
	db *Database
}

// Upsert inserts or replaces the prediction for a match
func (r *PredictionRepository) Upsert(ctx context.Context, prediction *models.Prediction) error {
	query := `
		INSERT INTO predictions (event_id, model_name, text, predicted_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id) DO UPDATE SET
			model_name = EXCLUDED.model_name,
			text = EXCLUDED.text,
			predicted_at = EXCLUDED.predicted_at
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		prediction.EventID, prediction.ModelName, prediction.Text, prediction.PredictedAt,
	).Scan(&prediction.ID, &prediction.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert prediction: %w", err)
	}

	return nil
}

// GetByEventID retrieves the stored prediction for a match
func (r *PredictionRepository) GetByEventID(ctx context.Context, eventID string) (*models.Prediction, error) {
	query := `
		SELECT id, event_id, model_name, text, predicted_at, created_at
		FROM predictions
		WHERE event_id = $1
	`

	var prediction models.Prediction
	err := r.db.Pool.QueryRow(ctx, query, eventID).Scan(
		&prediction.ID, &prediction.EventID, &prediction.ModelName,
		&prediction.Text, &prediction.PredictedAt, &prediction.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("prediction %s: %w", eventID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}

	return &prediction, nil
}

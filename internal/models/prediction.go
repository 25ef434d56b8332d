package models

import (
	"database/sql"
	"time"
)

// Prediction represents a natural-language match prediction produced by the
// chat-completion pass-through, keyed by the match's external event id
type Prediction struct {
	ID      int    `db:"id"`
	EventID string `db:"event_id"`

	ModelName sql.NullString `db:"model_name"`
	Text      string         `db:"text"`

	PredictedAt time.Time `db:"predicted_at"`
	CreatedAt   time.Time `db:"created_at"`
}

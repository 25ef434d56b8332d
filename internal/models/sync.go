package models

import "time"

// Sync run states published through the status tracker
const (
	SyncStateRunning   = "running"
	SyncStateCompleted = "completed"
	SyncStateError     = "error"
)

// SyncStatus is the ephemeral record published to the shared key-value store
// while a sync runs and for a bounded time after it finishes. It is owned
// exclusively by the running orchestrator; status-query callers only read.
type SyncStatus struct {
	StartedAt         time.Time   `json:"startedAt"`
	YearsToSync       int         `json:"yearsToSync"`
	CurrentLeague     string      `json:"currentLeague,omitempty"`
	CurrentLeagueName string      `json:"currentLeagueName,omitempty"`
	State             string      `json:"status"`
	CompletedAt       *time.Time  `json:"completedAt,omitempty"`
	Error             string      `json:"error,omitempty"`
	Result            *SyncResult `json:"result,omitempty"`
}

// LeagueSyncResult holds the per-league counters for one sync run
type LeagueSyncResult struct {
	LeagueID   string `json:"leagueId"`
	LeagueName string `json:"leagueName"`

	Total          int `json:"total"`          // matches seen
	Synced         int `json:"synced"`         // newly inserted
	Updated        int `json:"updated"`        // pre-existing records overwritten
	Failed         int `json:"failed"`         // failed to process, logged and skipped
	SeasonsSkipped int `json:"seasonsSkipped"` // past seasons already holding data
}

// SyncResult aggregates per-league results and grand totals for a run
type SyncResult struct {
	Leagues []LeagueSyncResult `json:"leagues"`

	Total          int `json:"total"`
	Synced         int `json:"synced"`
	Updated        int `json:"updated"`
	Failed         int `json:"failed"`
	SeasonsSkipped int `json:"seasonsSkipped"`
}

// Add accumulates a league result into the grand totals
func (r *SyncResult) Add(league LeagueSyncResult) {
	r.Leagues = append(r.Leagues, league)
	r.Total += league.Total
	r.Synced += league.Synced
	r.Updated += league.Updated
	r.Failed += league.Failed
	r.SeasonsSkipped += league.SeasonsSkipped
}

// Package synclock implements the distributed lock and status tracker that
// guarantees at most one sync run across process restarts and server
// instances. Two keys in the shared key-value store carry the whole state:
// a lock flag holding the owner's fencing token, and a structured status
// record for external observers.
package synclock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kikegomezgit/match-predictor-backend/internal/cache"
	"github.com/kikegomezgit/match-predictor-backend/internal/models"
)

const (
	// LockKey holds the running sync's fencing token
	LockKey = "sync:lock"
	// StatusKey holds the JSON-encoded SyncStatus record
	StatusKey = "sync:status"

	// RunningTTL bounds how long a crashed process can wedge the lock
	RunningTTL = 2 * time.Hour
	// ResultTTL keeps the terminal status around for post-completion inspection
	ResultTTL = time.Hour
)

var (
	// ErrLockHeld is returned when a sync is already running
	ErrLockHeld = errors.New("synclock: sync already running")
	// ErrNotOwner is returned when the caller's token does not match the lock
	ErrNotOwner = errors.New("synclock: lock not held by this token")
)

// KV is the key-value store contract the tracker needs. Get returns
// cache.ErrMiss for absent or expired keys.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Tracker coordinates sync runs through the shared key-value store
type Tracker struct {
	kv         KV
	runningTTL time.Duration
	resultTTL  time.Duration
}

// NewTracker creates a tracker with the standard TTLs
func NewTracker(kv KV) *Tracker {
	return &Tracker{
		kv:         kv,
		runningTTL: RunningTTL,
		resultTTL:  ResultTTL,
	}
}

// Acquire attempts to take the sync lock. On success it publishes the initial
// status record and returns the fencing token required by UpdateProgress and
// Release. Returns ErrLockHeld when another run owns the lock. Safe under
// concurrent callers: only one SetNX wins.
func (t *Tracker) Acquire(ctx context.Context, status models.SyncStatus) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	ok, err := t.kv.SetNX(ctx, LockKey, token, t.runningTTL)
	if err != nil {
		return "", fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	if !ok {
		return "", ErrLockHeld
	}

	status.State = models.SyncStateRunning
	if err := t.writeStatus(ctx, status, t.runningTTL); err != nil {
		// Give the lock back rather than holding it without a status record
		if delErr := t.kv.Delete(ctx, LockKey); delErr != nil {
			log.Error().Err(delErr).Msg("Failed to roll back sync lock")
		}
		return "", err
	}

	log.Info().Str("token", token).Msg("Sync lock acquired")
	return token, nil
}

// UpdateProgress applies a mutation to the published status while the lock is
// held. The caller must present the token returned by Acquire.
func (t *Tracker) UpdateProgress(ctx context.Context, token string, update func(*models.SyncStatus)) error {
	if err := t.verifyOwner(ctx, token); err != nil {
		return err
	}

	status, err := t.Status(ctx)
	if err != nil {
		return err
	}
	if status == nil {
		status = &models.SyncStatus{State: models.SyncStateRunning}
	}

	update(status)
	return t.writeStatus(ctx, *status, t.runningTTL)
}

// Release frees the lock and publishes the terminal status with the shorter
// result TTL. It runs on every exit path of a sync, success or failure.
func (t *Tracker) Release(ctx context.Context, token string, final models.SyncStatus) error {
	if err := t.verifyOwner(ctx, token); err != nil {
		return err
	}

	if err := t.kv.Delete(ctx, LockKey); err != nil {
		return fmt.Errorf("failed to release sync lock: %w", err)
	}

	if err := t.writeStatus(ctx, final, t.resultTTL); err != nil {
		return err
	}

	log.Info().Str("state", final.State).Msg("Sync lock released")
	return nil
}

// IsRunning reports whether a sync currently holds the lock
func (t *Tracker) IsRunning(ctx context.Context) (bool, error) {
	_, err := t.kv.Get(ctx, LockKey)
	if errors.Is(err, cache.ErrMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Status returns the most recently published status, or nil if none exists
// (never run, or the result TTL expired)
func (t *Tracker) Status(ctx context.Context) (*models.SyncStatus, error) {
	raw, err := t.kv.Get(ctx, StatusKey)
	if errors.Is(err, cache.ErrMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var status models.SyncStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return nil, fmt.Errorf("failed to decode sync status: %w", err)
	}
	return &status, nil
}

func (t *Tracker) verifyOwner(ctx context.Context, token string) error {
	owner, err := t.kv.Get(ctx, LockKey)
	if errors.Is(err, cache.ErrMiss) {
		return ErrNotOwner
	}
	if err != nil {
		return err
	}
	if owner != token {
		return ErrNotOwner
	}
	return nil
}

func (t *Tracker) writeStatus(ctx context.Context, status models.SyncStatus, ttl time.Duration) error {
	raw, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to encode sync status: %w", err)
	}
	if err := t.kv.Set(ctx, StatusKey, string(raw), ttl); err != nil {
		return fmt.Errorf("failed to publish sync status: %w", err)
	}
	return nil
}

func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate lock token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

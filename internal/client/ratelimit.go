package client

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kikegomezgit/match-predictor-backend/internal/metrics"
)

// RateCounter enforces the provider quota as a sliding call counter shared by
// every operation of the client. Once the counter reaches the quota the next
// caller is suspended for the full cooldown and the counter resets to zero.
// The counter is an explicit instance owned by the client, not package state,
// so the reset transition is testable in isolation.
type RateCounter struct {
	mu       sync.Mutex
	calls    int
	quota    int
	cooldown time.Duration

	// sleep is replaceable in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRateCounter creates a counter that pauses callers for cooldown once
// quota calls have been recorded
func NewRateCounter(quota int, cooldown time.Duration) *RateCounter {
	return &RateCounter{
		quota:    quota,
		cooldown: cooldown,
		sleep:    sleepContext,
	}
}

// Wait blocks until the caller is allowed to make the next API call. When the
// quota is exhausted it suspends for the cooldown, then resets the counter.
// The lock is held across the pause so concurrent callers queue behind the
// same shared budget.
func (rc *RateCounter) Wait(ctx context.Context) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.calls < rc.quota {
		return nil
	}

	log.Info().
		Int("calls", rc.calls).
		Int("quota", rc.quota).
		Dur("cooldown", rc.cooldown).
		Msg("API quota reached, pausing")
	metrics.RecordRateLimitPause()

	if err := rc.sleep(ctx, rc.cooldown); err != nil {
		return err
	}

	rc.calls = 0
	return nil
}

// Record increments the call counter. It is called after every API call,
// success or failure.
func (rc *RateCounter) Record() {
	rc.mu.Lock()
	rc.calls++
	rc.mu.Unlock()
}

// Calls returns the current counter value
func (rc *RateCounter) Calls() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.calls
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

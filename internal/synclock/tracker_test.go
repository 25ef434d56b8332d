package synclock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kikegomezgit/match-predictor-backend/internal/cache"
	"github.com/kikegomezgit/match-predictor-backend/internal/models"
)

// memoryKV is an in-memory KV with TTL semantics and a controllable clock
type memoryKV struct {
	mu   sync.Mutex
	now  time.Time
	data map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func newMemoryKV() *memoryKV {
	return &memoryKV{
		now:  time.Now(),
		data: make(map[string]memoryEntry),
	}
}

func (kv *memoryKV) advance(d time.Duration) {
	kv.mu.Lock()
	kv.now = kv.now.Add(d)
	kv.mu.Unlock()
}

func (kv *memoryKV) live(key string) (memoryEntry, bool) {
	entry, ok := kv.data[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && !kv.now.Before(entry.expiresAt) {
		delete(kv.data, key)
		return memoryEntry{}, false
	}
	return entry, true
}

func (kv *memoryKV) Get(_ context.Context, key string) (string, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	entry, ok := kv.live(key)
	if !ok {
		return "", cache.ErrMiss
	}
	return entry.value, nil
}

func (kv *memoryKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.data[key] = memoryEntry{value: value, expiresAt: kv.expiry(ttl)}
	return nil
}

func (kv *memoryKV) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if _, ok := kv.live(key); ok {
		return false, nil
	}
	kv.data[key] = memoryEntry{value: value, expiresAt: kv.expiry(ttl)}
	return true, nil
}

func (kv *memoryKV) Delete(_ context.Context, key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	delete(kv.data, key)
	return nil
}

func (kv *memoryKV) expiry(ttl time.Duration) time.Time {
	if ttl == 0 {
		return time.Time{}
	}
	return kv.now.Add(ttl)
}

func newStatus() models.SyncStatus {
	return models.SyncStatus{StartedAt: time.Now().UTC(), YearsToSync: 5}
}

func TestTracker_AcquireAndRelease(t *testing.T) {
	kv := newMemoryKV()
	tracker := NewTracker(kv)
	ctx := context.Background()

	token, err := tracker.Acquire(ctx, newStatus())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	running, err := tracker.IsRunning(ctx)
	require.NoError(t, err)
	assert.True(t, running)

	status, err := tracker.Status(ctx)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, models.SyncStateRunning, status.State)

	final := newStatus()
	final.State = models.SyncStateCompleted
	require.NoError(t, tracker.Release(ctx, token, final))

	running, err = tracker.IsRunning(ctx)
	require.NoError(t, err)
	assert.False(t, running, "Lock should be gone after release")

	status, err = tracker.Status(ctx)
	require.NoError(t, err)
	require.NotNil(t, status, "Terminal status should remain readable")
	assert.Equal(t, models.SyncStateCompleted, status.State)
}

func TestTracker_MutualExclusion(t *testing.T) {
	kv := newMemoryKV()
	tracker := NewTracker(kv)
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	wins := make(chan string, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if token, err := tracker.Acquire(ctx, newStatus()); err == nil {
				wins <- token
			} else {
				assert.ErrorIs(t, err, ErrLockHeld)
			}
		}()
	}
	wg.Wait()
	close(wins)

	assert.Len(t, collect(wins), 1, "Exactly one concurrent caller may win the lock")
}

func collect(ch chan string) []string {
	var out []string
	for v := range ch {
		out = append(out, v)
	}
	return out
}

func TestTracker_LockSelfExpires(t *testing.T) {
	kv := newMemoryKV()
	tracker := NewTracker(kv)
	ctx := context.Background()

	_, err := tracker.Acquire(ctx, newStatus())
	require.NoError(t, err)

	// Simulate a crashed process: no release, TTL elapses
	kv.advance(RunningTTL + time.Minute)

	running, err := tracker.IsRunning(ctx)
	require.NoError(t, err)
	assert.False(t, running, "Lock must self-heal after its TTL")

	_, err = tracker.Acquire(ctx, newStatus())
	assert.NoError(t, err, "A new run may acquire after expiry")
}

func TestTracker_TerminalStatusExpires(t *testing.T) {
	kv := newMemoryKV()
	tracker := NewTracker(kv)
	ctx := context.Background()

	token, err := tracker.Acquire(ctx, newStatus())
	require.NoError(t, err)

	final := newStatus()
	final.State = models.SyncStateError
	final.Error = "season listing failed"
	require.NoError(t, tracker.Release(ctx, token, final))

	kv.advance(ResultTTL + time.Minute)

	status, err := tracker.Status(ctx)
	require.NoError(t, err)
	assert.Nil(t, status, "Terminal status expires after the result TTL")
}

func TestTracker_UpdateProgress(t *testing.T) {
	kv := newMemoryKV()
	tracker := NewTracker(kv)
	ctx := context.Background()

	token, err := tracker.Acquire(ctx, newStatus())
	require.NoError(t, err)

	err = tracker.UpdateProgress(ctx, token, func(s *models.SyncStatus) {
		s.CurrentLeague = "4328"
		s.CurrentLeagueName = "English Premier League"
	})
	require.NoError(t, err)

	status, err := tracker.Status(ctx)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, "4328", status.CurrentLeague)
	assert.Equal(t, 5, status.YearsToSync, "Existing fields survive a progress merge")
}

func TestTracker_FencingToken(t *testing.T) {
	kv := newMemoryKV()
	tracker := NewTracker(kv)
	ctx := context.Background()

	_, err := tracker.Acquire(ctx, newStatus())
	require.NoError(t, err)

	err = tracker.UpdateProgress(ctx, "stranger-token", func(s *models.SyncStatus) {})
	assert.ErrorIs(t, err, ErrNotOwner)

	err = tracker.Release(ctx, "stranger-token", newStatus())
	assert.ErrorIs(t, err, ErrNotOwner)

	running, err := tracker.IsRunning(ctx)
	require.NoError(t, err)
	assert.True(t, running, "A stranger's release must not free the lock")
}

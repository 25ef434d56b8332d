// Package scheduler triggers the nightly sync run. It goes through the same
// orchestrator entry point as a manual request, so the distributed lock
// prevents the nightly run and a manual run from overlapping.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	syncsvc "github.com/kikegomezgit/match-predictor-backend/internal/sync"
)

// SyncStarter launches a background sync run
type SyncStarter interface {
	Start(ctx context.Context, years int) error
}

// Scheduler manages the nightly sync cron job
type Scheduler struct {
	syncer SyncStarter
	spec   string
	years  int
	cron   *cron.Cron
}

// NewScheduler creates a scheduler firing the given cron spec. years of 0
// means the orchestrator's configured default.
func NewScheduler(syncer SyncStarter, spec string, years int) *Scheduler {
	return &Scheduler{
		syncer: syncer,
		spec:   spec,
		years:  years,
		cron:   cron.New(),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() {
		s.runNightlySync(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly sync: %w", err)
	}

	s.cron.Start()
	log.Info().Str("schedule", s.spec).Msg("Nightly sync scheduled")
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) runNightlySync(ctx context.Context) {
	log.Info().Msg("Running nightly sync...")

	err := s.syncer.Start(ctx, s.years)
	if errors.Is(err, syncsvc.ErrAlreadyRunning) {
		// Someone beat us to it; the lock did its job
		log.Info().Msg("Sync already running, nightly run skipped")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Nightly sync failed to start")
	}
}

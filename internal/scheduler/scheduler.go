/*

This file drives the dashboard's refresh cadence with a cron scheduler.
One registered job runs the refresh cycle; the cron spec comes from
configuration so operators can tune the cadence without a rebuild.

*/

package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/stakewatch/stakewatch/internal/dashboard"
	"github.com/stakewatch/stakewatch/internal/logger"
)

// Scheduler manages the periodic refresh job.
type Scheduler struct {
	cron      *cron.Cron
	dashboard *dashboard.Dashboard
	logger    zerolog.Logger
	ctx       context.Context
}

// NewScheduler creates a scheduler bound to the given dashboard. The
// context bounds every refresh the scheduler triggers.
func NewScheduler(ctx context.Context, d *dashboard.Dashboard) (*Scheduler, error) {
	if d == nil {
		return nil, fmt.Errorf("dashboard cannot be nil")
	}
	return &Scheduler{
		cron:      cron.New(),
		dashboard: d,
		logger:    logger.GetForComponent("scheduler"),
		ctx:       ctx,
	}, nil
}

// Register adds the refresh job under the given cron spec, e.g.
// "@every 30s".
func (s *Scheduler) Register(refreshSpec string) error {
	if _, err := s.cron.AddFunc(refreshSpec, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task %q: %w", refreshSpec, err)
	}
	s.logger.Info().Str("spec", refreshSpec).Msg("Refresh task registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Msg("Scheduler started")
}

// Stop stops the cron scheduler gracefully and waits for a running
// refresh to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info().Msg("Scheduler stopped")
}

// RunRefreshNow executes the refresh task immediately, outside the cron
// cadence. Used at startup so the dashboard has a view before the first
// scheduled tick.
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	if s.ctx.Err() != nil {
		s.logger.Debug().Msg("Skipping refresh: context cancelled")
		return
	}
	s.dashboard.RefreshCycle(s.ctx)
}

package service

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// CleanupScheduler runs the orphaned-capability sweep on a cron schedule so
// grants held by deleted, deactivated, or terminated employments converge to
// revoked without manual intervention.
type CleanupScheduler struct {
	cron     *cron.Cron
	svc      *CapabilityService
	schedule string
	logger   *slog.Logger
}

// NewCleanupScheduler creates a scheduler. schedule is a standard cron
// expression; an empty value defaults to hourly.
func NewCleanupScheduler(svc *CapabilityService, schedule string, logger *slog.Logger) *CleanupScheduler {
	if schedule == "" {
		schedule = "@hourly"
	}
	return &CleanupScheduler{
		cron:     cron.New(),
		svc:      svc,
		schedule: schedule,
		logger:   logger,
	}
}

// Start registers the sweep job and starts the cron scheduler.
func (s *CleanupScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.run)
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("cleanup scheduler started", "schedule", s.schedule)
	return nil
}

// Stop gracefully stops the cron scheduler.
func (s *CleanupScheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("cleanup scheduler stopped")
}

func (s *CleanupScheduler) run() {
	report, err := s.svc.CleanupOrphanedPermissions(context.Background())
	if err != nil {
		s.logger.Error("cleanup sweep failed", "error", err)
		return
	}
	if report.CleanedCount > 0 {
		s.logger.Info("cleanup sweep revoked orphaned grants",
			"cleaned", report.CleanedCount, "reasons", report.Reasons)
	}
}

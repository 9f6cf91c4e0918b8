package server

import (
	"context"
	"time"

	"vibecut/internal/deps"
	"vibecut/internal/logging"
	"vibecut/internal/preflight"
)

// MaintenanceReport summarizes startup housekeeping.
type MaintenanceReport struct {
	StaleWorkspaces  int
	AbandonedRenders int64
	PrunedRenders    int64
	PrunedLogs       int
	FailedChecks     []preflight.Result
}

// Maintain sweeps workspaces left by a previous process, closes out renders
// that never finished, applies history and log retention, and logs failed
// preflight checks. Failures are logged and never stop startup.
func (s *Server) Maintain(ctx context.Context) MaintenanceReport {
	var report MaintenanceReport
	now := time.Now()

	if age := s.cfg.StaleWorkspaceAge(); age > 0 {
		swept := s.service.Workspaces().CleanStale(ctx, age)
		report.StaleWorkspaces = len(swept.Removed)
		if len(swept.Errors) > 0 {
			logging.WarnWithContext(s.logger, "workspace sweep incomplete", "workspace_sweep_failed",
				logging.Int("failures", len(swept.Errors)),
				logging.Error(swept.Errors[0].Error),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
		}
	}

	if s.history != nil {
		if n, err := s.history.MarkAbandoned(ctx); err != nil {
			logging.WarnWithContext(s.logger, "failed to close abandoned renders", "history_write_failed", logging.Error(err))
		} else {
			report.AbandonedRenders = n
		}
		if days := s.cfg.History.RetentionDays; days > 0 {
			if n, err := s.history.Prune(ctx, now.AddDate(0, 0, -days)); err != nil {
				logging.WarnWithContext(s.logger, "failed to prune render history", "history_write_failed", logging.Error(err))
			} else {
				report.PrunedRenders = n
			}
		}
	}

	report.PrunedLogs = logging.CleanupOldLogs(s.logger, s.cfg.Paths.LogDir, logging.LogFilePattern,
		logging.DailyLogPath(s.cfg.Paths.LogDir, now), s.cfg.Logging.RetentionDays, now)

	report.FailedChecks = preflight.Failed(preflight.RunAll(ctx, s.cfg))
	for _, check := range report.FailedChecks {
		logging.WarnWithContext(s.logger, "preflight check failed", "preflight_failed",
			logging.String("check", check.Name),
			logging.String("detail", check.Detail),
			logging.String(logging.FieldImpact, "renders may fail until resolved"),
		)
	}

	for _, dep := range deps.Blocking(preflight.CheckSystemDeps(s.cfg)) {
		logging.ErrorWithContext(s.logger, "engine binary unavailable", "engine_missing",
			logging.String("binary", dep.Name),
			logging.String(logging.FieldErrorHint, dep.Detail),
		)
	}

	s.logger.Info("startup maintenance complete",
		logging.Int("stale_workspaces", report.StaleWorkspaces),
		logging.Int64("abandoned_renders", report.AbandonedRenders),
		logging.Int64("pruned_renders", report.PrunedRenders),
		logging.Int("pruned_logs", report.PrunedLogs),
		logging.String(logging.FieldEventType, "startup_maintenance"),
	)
	return report
}

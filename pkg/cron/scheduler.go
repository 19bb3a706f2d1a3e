// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/Mbelalia/facture-engine/pkg/jobs"
)

// Scheduler runs the job store reaper on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	store  *jobs.Store
	spec   string
	logger *slog.Logger
}

// NewScheduler creates a scheduler that reaps expired jobs per spec
// (standard 5-field cron format).
func NewScheduler(store *jobs.Store, spec string, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:   c,
		store:  store,
		spec:   spec,
		logger: logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.reapExpiredJobs)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("reap_schedule", s.spec),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

func (s *Scheduler) reapExpiredJobs() {
	removed := s.store.Reap()
	if removed > 0 {
		s.logger.Info("reaped expired jobs",
			slog.Int("removed", removed),
			slog.Int("remaining", s.store.Len()),
		)
	}
}

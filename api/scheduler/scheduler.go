package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/jonasfh/picobell-api/databases"
)

// Scheduler runs the periodic maintenance jobs. Currently that is a single
// nightly prune of the request audit log.
type Scheduler struct {
	cron          *cron.Cron
	LogDB         databases.APILogDatabase
	retentionDays int
}

// NewScheduler creates a new scheduler instance
func NewScheduler(logDB databases.APILogDatabase, retentionDays int) *Scheduler {
	return &Scheduler{
		cron:          cron.New(cron.WithLocation(time.UTC)),
		LogDB:         logDB,
		retentionDays: retentionDays,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	_, err := s.cron.AddFunc("@daily", s.PruneAPILogs)
	if err != nil {
		zap.S().Errorw("failed to register api log prune job",
			"error", err)
		return
	}
	s.cron.Start()
	zap.S().Infow("scheduler started",
		"apiLogRetentionDays", s.retentionDays,
	)
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// PruneAPILogs deletes audit rows older than the retention window.
// Exported so operators can trigger it manually.
func (s *Scheduler) PruneAPILogs() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	deleted, err := s.LogDB.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		zap.S().Errorw("failed to prune api logs",
			"error", err)
		return
	}
	zap.S().Infow("pruned api logs",
		"deleted", deleted,
		"cutoff", cutoff,
	)
}

package job

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs background jobs on cron schedules
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewScheduler creates a stopped scheduler. A job still running when its next
// tick arrives is skipped for that tick.
func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DiscardLogger),
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
		logger: logger,
	}
}

// Register adds job under spec, e.g. "@every 10m" or "*/5 * * * *"
func (s *Scheduler) Register(name, spec string, job cron.Job) error {
	id, err := s.cron.AddJob(spec, job)
	if err != nil {
		return fmt.Errorf("failed to schedule %s with %q: %w", name, spec, err)
	}
	s.logger.Info("Job scheduled",
		zap.String("job", name),
		zap.String("schedule", spec),
		zap.Int("entry_id", int(id)),
	)
	return nil
}

// Len returns the number of registered jobs
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("Timed out waiting for running jobs")
	}
}

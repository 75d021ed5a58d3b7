package job

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/notkshitijsingh/AgileFlowAI/internal/metrics"
	"github.com/notkshitijsingh/AgileFlowAI/internal/repository"
)

const cleanupTimeout = 30 * time.Second

// SessionCleanupJob removes sessions that have been idle longer than the session TTL
type SessionCleanupJob struct {
	sessionRepo repository.SessionRepository
	ttl         time.Duration
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewSessionCleanupJob creates a new SessionCleanupJob instance
func NewSessionCleanupJob(
	sessionRepo repository.SessionRepository,
	ttl time.Duration,
	m *metrics.Metrics,
	logger *zap.Logger,
) *SessionCleanupJob {
	return &SessionCleanupJob{
		sessionRepo: sessionRepo,
		ttl:         ttl,
		metrics:     m,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Run executes the cleanup job. It implements cron.Job.
func (j *SessionCleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	cutoff := j.now().Add(-j.ttl)
	j.logger.Debug("Starting idle session cleanup", zap.Time("cutoff", cutoff))

	removed, err := j.sessionRepo.DeleteIdleSince(ctx, cutoff)
	if err != nil {
		j.logger.Error("Failed to delete idle sessions",
			zap.Time("cutoff", cutoff),
			zap.Error(err),
		)
		return
	}

	if removed == 0 {
		j.logger.Debug("No idle sessions found")
		return
	}

	j.metrics.AddSessionsExpired(removed)
	j.logger.Info("Idle session cleanup completed",
		zap.Int("removed", removed),
		zap.Duration("ttl", j.ttl),
	)
}

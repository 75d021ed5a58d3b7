package metrics

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SessionCounter reports how many sessions are stored
type SessionCounter interface {
	Count(ctx context.Context) (int64, error)
}

// BusinessMetricsCollector collects business metrics periodically
type BusinessMetricsCollector struct {
	sessions SessionCounter
	metrics  *Metrics
	logger   *zap.Logger
	ticker   *time.Ticker
	done     chan struct{}
}

// NewBusinessMetricsCollector creates a new collector
func NewBusinessMetricsCollector(sessions SessionCounter, metrics *Metrics, logger *zap.Logger, interval time.Duration) *BusinessMetricsCollector {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &BusinessMetricsCollector{
		sessions: sessions,
		metrics:  metrics,
		logger:   logger,
		ticker:   time.NewTicker(interval),
		done:     make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *BusinessMetricsCollector) Start() {
	go func() {
		c.collect()

		for {
			select {
			case <-c.ticker.C:
				c.collect()
			case <-c.done:
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *BusinessMetricsCollector) Stop() {
	c.ticker.Stop()
	close(c.done)
}

func (c *BusinessMetricsCollector) collect() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic in business metrics collection",
				zap.Any("panic", r),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := c.sessions.Count(ctx)
	if err != nil {
		c.logger.Error("Failed to count sessions", zap.Error(err))
		return
	}
	c.metrics.SetSessionsActive(count)
}

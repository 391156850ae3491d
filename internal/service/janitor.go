package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Janitor periodically evicts idle quiz sessions.
type Janitor struct {
	manager  *SessionManager
	ttl      time.Duration
	interval time.Duration
	logger   *zap.Logger
}

// NewJanitor creates a janitor that sweeps every interval and evicts sessions idle for ttl.
func NewJanitor(manager *SessionManager, ttl, interval time.Duration, logger *zap.Logger) *Janitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Janitor{
		manager:  manager,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the sweep schedule until ctx is done.
func (j *Janitor) Start(ctx context.Context) error {
	j.logger.Info("session janitor started",
		zap.Duration("ttl", j.ttl),
		zap.Duration("interval", j.interval),
	)

	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(fmt.Sprintf("@every %s", j.interval), func() {
		j.RunOnce()
	})
	if err != nil {
		return fmt.Errorf("add sweep job: %w", err)
	}

	c.Start()

	<-ctx.Done()

	<-c.Stop().Done()
	j.logger.Info("session janitor stopped")
	return nil
}

// RunOnce performs a single sweep.
func (j *Janitor) RunOnce() int {
	n := j.manager.Sweep(j.ttl)
	if n > 0 {
		j.logger.Info("idle sessions evicted",
			zap.Int("evicted", n),
			zap.Int("live", j.manager.Len()),
		)
	}
	return n
}

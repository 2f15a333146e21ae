package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/healthcheckify/internal/domain"
	"github.com/hamed0406/healthcheckify/internal/health"
)

// Sweeper refreshes every stale target and reports the resulting statuses.
type Sweeper interface {
	CheckAll(ctx context.Context) ([]health.TargetStatus, error)
}

// Rechecker keeps the registry warm by running CheckAll on a fixed interval,
// so lookups between sweeps are served from cache.
type Rechecker struct {
	Logger   *zap.Logger
	Registry Sweeper
	Interval time.Duration
}

func NewRechecker(logger *zap.Logger, reg Sweeper, interval time.Duration) *Rechecker {
	if interval < 0 {
		interval = 0
	}
	return &Rechecker{
		Logger:   logger,
		Registry: reg,
		Interval: interval,
	}
}

// Run starts the loop. It does an immediate pass, then runs each tick.
// Stops when ctx is cancelled.
func (r *Rechecker) Run(ctx context.Context) {
	if r.Interval == 0 {
		// disabled
		r.Logger.Info("rechecker_disabled")
		return
	}
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	// immediate pass
	r.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.Logger.Info("rechecker_stopped")
			return
		case <-t.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Rechecker) runOnce(ctx context.Context) {
	all, err := r.Registry.CheckAll(ctx)
	if err != nil && ctx.Err() == nil {
		r.Logger.Warn("rechecker_sweep_error", zap.Error(err))
	}

	down := 0
	for _, ts := range all {
		if ts.Status == domain.StatusDown {
			down++
		}
	}
	r.Logger.Debug("rechecker_swept",
		zap.Int("targets", len(all)),
		zap.Int("down", down),
	)
}

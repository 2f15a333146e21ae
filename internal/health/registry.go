// Package health owns the per-target state machine. A status query either
// returns the cached status or, once the target's probe interval has elapsed,
// dispatches a single probe through the pool and records its verdict.
package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/healthcheckify/internal/domain"
	"github.com/hamed0406/healthcheckify/internal/pool"
	"github.com/hamed0406/healthcheckify/internal/probe"
)

var ErrNotFound = errors.New("target not found")

// backdate is added to a target's interval when computing its initial
// last-probe time so the first query always probes.
const backdate = 10 * time.Second

// Dispatcher runs probe jobs off the calling goroutine.
type Dispatcher interface {
	Submit(ctx context.Context, job pool.Job) error
}

// Observer receives probe lifecycle events, e.g. for metrics.
type Observer interface {
	ProbeStarted(id domain.TargetID)
	ProbeCompleted(id domain.TargetID, status domain.Status, latency time.Duration)
	CacheHit(id domain.TargetID)
}

// TargetStatus is a point-in-time view of one target.
type TargetStatus struct {
	ID          domain.TargetID `json:"id"`
	URL         string          `json:"url"`
	Status      domain.Status   `json:"status"`
	LastProbeAt time.Time       `json:"last_probe_at"`
	Reason      string          `json:"reason,omitempty"`
}

type Registry struct {
	logger   *zap.Logger
	exec     probe.Executor
	dispatch Dispatcher
	observer Observer
	now      func() time.Time

	entries []*entry
	index   *xsync.MapOf[domain.TargetID, *entry]
}

type Option func(*Registry)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func WithObserver(o Observer) Option {
	return func(r *Registry) {
		if o != nil {
			r.observer = o
		}
	}
}

// New builds a registry over targets. Ids are expected to be unique; when
// they are not, lookups by id resolve to the first target with that id.
func New(logger *zap.Logger, targets []domain.Target, exec probe.Executor, dispatch Dispatcher, opts ...Option) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		logger:   logger,
		exec:     exec,
		dispatch: dispatch,
		observer: nopObserver{},
		now:      time.Now,
		index:    xsync.NewMapOf[domain.TargetID, *entry](xsync.WithPresize(len(targets))),
	}
	for _, opt := range opts {
		opt(r)
	}

	now := r.now()
	r.entries = make([]*entry, 0, len(targets))
	for _, t := range targets {
		e := newEntry(t.WithDefaults(), now)
		r.entries = append(r.entries, e)
		if _, loaded := r.index.LoadOrStore(e.target.ID, e); loaded {
			r.logger.Warn("registry_duplicate_id", zap.String("target_id", string(e.target.ID)))
		}
	}
	r.logger.Info("registry_loaded", zap.Int("targets", len(r.entries)))
	return r
}

func (r *Registry) Len() int { return len(r.entries) }

// IDs returns target ids in configuration order.
func (r *Registry) IDs() []domain.TargetID {
	ids := make([]domain.TargetID, 0, len(r.entries))
	for _, e := range r.entries {
		ids = append(ids, e.target.ID)
	}
	return ids
}

// StatusOf returns the cached status without probing.
func (r *Registry) StatusOf(id domain.TargetID) (domain.Status, error) {
	e, ok := r.index.Load(id)
	if !ok {
		return domain.StatusProcessing, ErrNotFound
	}
	return e.view().Status, nil
}

// Snapshot returns every target's cached state without probing.
func (r *Registry) Snapshot() []TargetStatus {
	out := make([]TargetStatus, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.view())
	}
	return out
}

// Check applies the TTL rule to one target. When the interval has elapsed it
// probes and waits for the verdict; otherwise, including while another
// caller's probe is in flight, it returns the cached status at once.
func (r *Registry) Check(ctx context.Context, id domain.TargetID) (domain.Status, error) {
	e, ok := r.index.Load(id)
	if !ok {
		return domain.StatusProcessing, ErrNotFound
	}

	res, cached, err := r.start(ctx, e)
	if err != nil || res == nil {
		return cached, err
	}

	select {
	case s := <-res:
		return s, nil
	case <-ctx.Done():
		return domain.StatusProcessing, ctx.Err()
	}
}

// CheckAll applies Check to every target. Stale targets are all dispatched
// before any result is awaited, so probes overlap up to the pool size.
// Errors only report probes that could not be dispatched or awaited; those
// targets keep their cached state in the result.
func (r *Registry) CheckAll(ctx context.Context) ([]TargetStatus, error) {
	out := make([]TargetStatus, len(r.entries))
	pending := make([]<-chan domain.Status, len(r.entries))

	var errs error
	for i, e := range r.entries {
		res, _, err := r.start(ctx, e)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", e.target.ID, err))
		}
		pending[i] = res
	}

	for i, e := range r.entries {
		if pending[i] != nil {
			select {
			case <-pending[i]:
			case <-ctx.Done():
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", e.target.ID, ctx.Err()))
			}
		}
		out[i] = e.view()
	}
	return out, errs
}

// start runs the TTL gate for e. It returns a channel that yields the probe
// verdict when a probe was dispatched, or the cached status when none was.
func (r *Registry) start(ctx context.Context, e *entry) (<-chan domain.Status, domain.Status, error) {
	now := r.now()
	prev, due := e.begin(now)
	if !due {
		r.observer.CacheHit(e.target.ID)
		r.logger.Debug("cached_status",
			zap.String("target_id", string(e.target.ID)),
			zap.String("status", prev.status.String()),
		)
		return nil, prev.status, nil
	}

	r.observer.ProbeStarted(e.target.ID)
	res := make(chan domain.Status, 1)
	if err := r.dispatch.Submit(ctx, r.probeJob(e, res)); err != nil {
		e.rollback(prev, now)
		r.logger.Warn("probe_dispatch_error",
			zap.String("target_id", string(e.target.ID)),
			zap.Error(err),
		)
		return nil, prev.status, err
	}
	return res, domain.StatusProcessing, nil
}

// probeJob records a verdict even when the executor panics: the deferred
// completion marks the target down and the panic continues to the pool.
func (r *Registry) probeJob(e *entry, res chan<- domain.Status) pool.Job {
	return func() {
		status := domain.StatusDown
		out := probe.Outcome{Reason: "probe_panic"}
		defer func() {
			changed := e.complete(status, out.Reason)
			r.observer.ProbeCompleted(e.target.ID, status, out.Latency)
			r.logProbe(e, status, out, changed)
			res <- status
		}()

		out = r.exec.Execute(context.Background(), e.target)
		status = probe.Verify(e.target.Strategy, out)
	}
}

func (r *Registry) logProbe(e *entry, status domain.Status, out probe.Outcome, changed bool) {
	fields := []zap.Field{
		zap.String("target_id", string(e.target.ID)),
		zap.String("url", e.target.URL),
		zap.String("status", status.String()),
		zap.Int("http_status", out.StatusCode),
		zap.Float64("latency_ms", float64(out.Latency.Microseconds())/1000),
		zap.String("reason", out.Reason),
	}
	if out.Err != nil {
		fields = append(fields, zap.Error(out.Err))
	}
	if changed {
		r.logger.Info("probe_status_changed", fields...)
		return
	}
	r.logger.Debug("probe_completed", fields...)
}

type nopObserver struct{}

func (nopObserver) ProbeStarted(domain.TargetID) {}
func (nopObserver) ProbeCompleted(domain.TargetID, domain.Status, time.Duration) {}
func (nopObserver) CacheHit(domain.TargetID) {}

package health

import (
	"sync"
	"time"

	"github.com/hamed0406/healthcheckify/internal/domain"
)

// entry pairs an immutable target with its guarded runtime state.
type entry struct {
	target domain.Target

	mu          sync.Mutex
	status      domain.Status
	lastProbeAt time.Time
	// lastVerdict is the last non-processing status, used to detect changes.
	lastVerdict domain.Status
	reason      string
}

type stateSnapshot struct {
	status      domain.Status
	lastProbeAt time.Time
}

func newEntry(t domain.Target, now time.Time) *entry {
	return &entry{
		target:      t,
		status:      domain.StatusProcessing,
		lastProbeAt: now.Add(-(t.ProbeInterval + backdate)),
		lastVerdict: domain.StatusProcessing,
	}
}

// begin reports whether a probe is due at now. If so, the target moves to
// Processing and its last-probe time is taken before the probe runs, which
// keeps concurrent callers from starting a second one.
func (e *entry) begin(now time.Time) (prev stateSnapshot, due bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev = stateSnapshot{status: e.status, lastProbeAt: e.lastProbeAt}
	if now.Sub(e.lastProbeAt) < e.target.ProbeInterval {
		return prev, false
	}
	e.status = domain.StatusProcessing
	e.lastProbeAt = now
	return prev, true
}

// rollback undoes begin for a probe that was never dispatched.
func (e *entry) rollback(prev stateSnapshot, startedAt time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastProbeAt.Equal(startedAt) && e.status == domain.StatusProcessing {
		e.status = prev.status
		e.lastProbeAt = prev.lastProbeAt
	}
}

// complete stores a verdict and reports whether it differs from the last one.
func (e *entry) complete(status domain.Status, reason string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = status
	e.reason = reason
	changed := e.lastVerdict != status
	e.lastVerdict = status
	return changed
}

func (e *entry) view() TargetStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return TargetStatus{
		ID:          e.target.ID,
		URL:         e.target.URL,
		Status:      e.status,
		LastProbeAt: e.lastProbeAt,
		Reason:      e.reason,
	}
}

package probe

import (
	"context"
	"time"

	"github.com/hamed0406/healthcheckify/internal/domain"
)

// Outcome is the raw result of a single probe.
//
// Fields:
//   - Err: transport failure (refused, DNS, timeout). StatusCode is 0 when set.
//   - Matched: the body contained the strategy's pattern. Only set when the
//     strategy needs the body.
//   - BodyErr: the body could not be read up to a match or its end.
//   - Reason: response status line, or a transport failure class.
type Outcome struct {
	StatusCode int
	Matched    bool
	BodyErr    error
	Err        error
	Latency    time.Duration
	Reason     string
}

// Executor performs exactly one network call for a target.
type Executor interface {
	Execute(ctx context.Context, t domain.Target) Outcome
}

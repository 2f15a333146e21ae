package probe

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hamed0406/healthcheckify/internal/domain"
)

type HTTPExecutor struct {
	Client *http.Client
	// ChunkSize is the body read size used for pattern matching; 0 uses 32 KiB.
	ChunkSize int
}

func NewHTTPExecutor() *HTTPExecutor {
	return &HTTPExecutor{Client: &http.Client{}}
}

// Execute sends one request for t. The target's CallTimeout bounds the whole
// exchange, body read included. It never retries.
func (h *HTTPExecutor) Execute(ctx context.Context, t domain.Target) Outcome {
	if t.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.CallTimeout)
		defer cancel()
	}

	var body io.Reader
	if t.Method == domain.MethodPost {
		body = strings.NewReader(t.RequestBody)
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, methodOf(t), t.URL, body)
	if err != nil {
		return Outcome{Err: err, Reason: ReasonInvalidRequest}
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return Outcome{Err: err, Reason: classifyTransport(err), Latency: time.Since(start)}
	}
	defer resp.Body.Close()

	out := Outcome{StatusCode: resp.StatusCode, Reason: resp.Status}
	if t.Strategy.NeedsBody() {
		out.Matched, out.BodyErr = streamContains(resp.Body, []byte(t.Strategy.Pattern), h.ChunkSize)
		if out.BodyErr != nil {
			out.Reason = classifyTransport(out.BodyErr)
		}
	}
	out.Latency = time.Since(start)
	return out
}

func methodOf(t domain.Target) string {
	if t.Method == domain.MethodPost {
		return http.MethodPost
	}
	return http.MethodGet
}

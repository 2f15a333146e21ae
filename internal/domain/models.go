package domain

import (
	"net/http"
	"time"
)

type TargetID string

// Method is the HTTP verb a probe is sent with. Only GET and POST are supported.
type Method string

const (
	MethodGet  Method = http.MethodGet
	MethodPost Method = http.MethodPost
)

const (
	DefaultProbeInterval = 10 * time.Second
	DefaultCallTimeout   = 30 * time.Second
)

// Target describes one monitored endpoint. It is not modified after the
// registry is built.
type Target struct {
	ID            TargetID      `json:"id"`
	URL           string        `json:"url"`
	Method        Method        `json:"method"`
	RequestBody   string        `json:"request_body,omitempty"`
	Strategy      Strategy      `json:"strategy"`
	ProbeInterval time.Duration `json:"probe_interval"`
	CallTimeout   time.Duration `json:"call_timeout"`
}

// WithDefaults fills the optional fields left empty.
func (t Target) WithDefaults() Target {
	if t.Method == "" {
		t.Method = MethodGet
	}
	if t.Strategy.Kind == 0 {
		t.Strategy = StatusCodeInRange()
	}
	if t.ProbeInterval <= 0 {
		t.ProbeInterval = DefaultProbeInterval
	}
	if t.CallTimeout <= 0 {
		t.CallTimeout = DefaultCallTimeout
	}
	return t
}

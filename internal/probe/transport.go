package probe

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// Transport failure classes reported in Outcome.Reason.
const (
	ReasonTimeout        = "timeout"
	ReasonDNS            = "dns"
	ReasonRefused        = "connection_refused"
	ReasonTransport      = "transport"
	ReasonInvalidRequest = "invalid_request"
)

func classifyTransport(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}

	var de *net.DNSError
	if errors.As(err, &de) {
		if de.IsTimeout {
			return ReasonTimeout
		}
		return ReasonDNS
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return ReasonRefused
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ReasonTimeout
	}
	return ReasonTransport
}

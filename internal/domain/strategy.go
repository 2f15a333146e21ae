package domain

import "encoding/json"

type StrategyKind uint8

const (
	_ StrategyKind = iota
	KindStatusCode
	KindBodyContains
)

func (k StrategyKind) String() string {
	switch k {
	case KindStatusCode:
		return "statuscode"
	case KindBodyContains:
		return "stringcontains"
	default:
		return "unknown"
	}
}

// Strategy is the rule used to classify a probe response. The set of kinds is
// closed; Pattern is only meaningful for KindBodyContains.
type Strategy struct {
	Kind    StrategyKind
	Pattern string
}

// StatusCodeInRange treats any status in [200, 400) as healthy.
func StatusCodeInRange() Strategy {
	return Strategy{Kind: KindStatusCode}
}

// BodyContains treats a response as healthy when its body contains pattern.
func BodyContains(pattern string) Strategy {
	return Strategy{Kind: KindBodyContains, Pattern: pattern}
}

// NeedsBody reports whether the response body must be read to classify.
func (s Strategy) NeedsBody() bool {
	return s.Kind == KindBodyContains
}

func (s Strategy) String() string {
	if s.Kind == KindBodyContains {
		return s.Kind.String() + "(" + s.Pattern + ")"
	}
	return s.Kind.String()
}

func (s Strategy) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    string `json:"kind"`
		Pattern string `json:"pattern,omitempty"`
	}{s.Kind.String(), s.Pattern})
}

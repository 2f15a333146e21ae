package domain

type Status uint8

const (
	StatusProcessing Status = iota
	StatusHealthy
	StatusDown
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDown:
		return "down"
	default:
		return "processing"
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Good reports whether callers should treat the target as available.
// Processing counts as available: it only means no verified result yet.
func (s Status) Good() bool {
	return s != StatusDown
}

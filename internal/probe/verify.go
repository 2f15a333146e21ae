package probe

import "github.com/hamed0406/healthcheckify/internal/domain"

// Verify classifies an outcome under strategy s. Transport failures are
// always down regardless of the strategy.
func Verify(s domain.Strategy, o Outcome) domain.Status {
	if o.Err != nil {
		return domain.StatusDown
	}

	switch s.Kind {
	case domain.KindBodyContains:
		if o.BodyErr != nil {
			return domain.StatusDown
		}
		if o.Matched {
			return domain.StatusHealthy
		}
		return domain.StatusDown
	default:
		if o.StatusCode >= 200 && o.StatusCode < 400 {
			return domain.StatusHealthy
		}
		return domain.StatusDown
	}
}

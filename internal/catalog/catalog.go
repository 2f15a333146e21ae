// Package catalog loads the monitored targets from a JSON file.
//
// The file is an array of groups. Each service of a group becomes one target
// carrying the group's id:
//
//	[{"id": "api", "services": [{"url": "https://api.example.com/health",
//	  "method": "post", "requestBody": "{}", "strategy": "stringcontains",
//	  "strategy_string": "ok", "interval": 10, "call_timeout": 30}]}]
//
// A group may also be flat, with the service fields next to "id".
// interval and call_timeout are whole seconds.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/multierr"

	"github.com/hamed0406/healthcheckify/internal/domain"
)

var ErrEmpty = errors.New("catalog: no targets configured")

type service struct {
	URL            string `json:"url"`
	Method         string `json:"method"`
	RequestBody    string `json:"requestBody"`
	Strategy       string `json:"strategy"`
	StrategyString string `json:"strategy_string"`
	Interval       *int64 `json:"interval"`
	CallTimeout    *int64 `json:"call_timeout"`
}

type group struct {
	ID       string    `json:"id"`
	Services []service `json:"services"`
	service
}

// Load reads and parses the catalog at path.
func Load(path string) ([]domain.Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog. Every problem found is reported;
// no targets are returned unless the whole catalog is valid.
func Parse(data []byte) ([]domain.Target, error) {
	var groups []group
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}

	var (
		targets []domain.Target
		errs    error
	)
	for i, g := range groups {
		if strings.TrimSpace(g.ID) == "" {
			errs = multierr.Append(errs, fmt.Errorf("entry %d: id: cannot be blank", i))
			continue
		}
		services := g.Services
		if len(services) == 0 {
			services = []service{g.service}
		}
		for j, s := range services {
			s.URL = strings.TrimSpace(s.URL)
			if err := s.Validate(); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("entry %d (%s) service %d: %w", i, g.ID, j, err))
				continue
			}
			targets = append(targets, s.target(domain.TargetID(g.ID)))
		}
	}
	if errs != nil {
		return nil, errs
	}
	if len(targets) == 0 {
		return nil, ErrEmpty
	}
	return targets, nil
}

func (s service) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.URL, validation.Required, validation.By(validateURL)),
		validation.Field(&s.StrategyString, validation.When(s.bodyMatch(), validation.Required)),
		validation.Field(&s.Interval, validation.NilOrNotEmpty, validation.Min(int64(1))),
		validation.Field(&s.CallTimeout, validation.NilOrNotEmpty, validation.Min(int64(1))),
	)
}

func (s service) bodyMatch() bool {
	return strings.EqualFold(s.Strategy, "stringcontains")
}

func (s service) target(id domain.TargetID) domain.Target {
	t := domain.Target{
		ID:          id,
		URL:         s.URL,
		Method:      domain.MethodGet,
		RequestBody: s.RequestBody,
		Strategy:    domain.StatusCodeInRange(),
	}
	if strings.EqualFold(s.Method, "post") {
		t.Method = domain.MethodPost
	}
	if s.bodyMatch() {
		t.Strategy = domain.BodyContains(s.StrategyString)
	}
	if s.Interval != nil {
		t.ProbeInterval = time.Duration(*s.Interval) * time.Second
	}
	if s.CallTimeout != nil {
		t.CallTimeout = time.Duration(*s.CallTimeout) * time.Second
	}
	return t.WithDefaults()
}

func validateURL(value interface{}) error {
	raw, _ := value.(string)
	u, err := url.Parse(raw)
	if err != nil {
		return errors.New("must be a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must use http or https scheme")
	}
	if u.Host == "" {
		return errors.New("must have a host")
	}
	return nil
}

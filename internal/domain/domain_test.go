package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestTarget_WithDefaults(t *testing.T) {
	got := Target{ID: "T1", URL: "https://example.com"}.WithDefaults()

	if got.Method != MethodGet {
		t.Fatalf("want GET, got %q", got.Method)
	}
	if got.Strategy.Kind != KindStatusCode {
		t.Fatalf("want status code strategy, got %v", got.Strategy)
	}
	if got.ProbeInterval != 10*time.Second || got.CallTimeout != 30*time.Second {
		t.Fatalf("unexpected durations: interval=%v timeout=%v", got.ProbeInterval, got.CallTimeout)
	}

	// explicit values survive
	set := Target{
		ID:            "T2",
		URL:           "https://example.com",
		Method:        MethodPost,
		Strategy:      BodyContains("origin"),
		ProbeInterval: time.Minute,
		CallTimeout:   time.Second,
	}.WithDefaults()
	if set.Method != MethodPost || set.Strategy.Pattern != "origin" ||
		set.ProbeInterval != time.Minute || set.CallTimeout != time.Second {
		t.Fatalf("explicit values overwritten: %+v", set)
	}
}

func TestStatus_StringAndJSON(t *testing.T) {
	cases := map[Status]string{
		StatusProcessing: "processing",
		StatusHealthy:    "healthy",
		StatusDown:       "down",
	}
	for s, want := range cases {
		if s.String() != want {
			t.Fatalf("String(%d)=%q want %q", s, s.String(), want)
		}
		b, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(b) != `"`+want+`"` {
			t.Fatalf("json(%d)=%s", s, b)
		}
	}
	if !StatusProcessing.Good() || !StatusHealthy.Good() || StatusDown.Good() {
		t.Fatalf("Good() mapping wrong")
	}
}

func TestStrategy_JSONAndBodyNeed(t *testing.T) {
	b, err := json.Marshal(Target{ID: "T1", Strategy: BodyContains("origin")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"strategy":{"kind":"stringcontains","pattern":"origin"}`) {
		t.Fatalf("unexpected json: %s", b)
	}
	if StatusCodeInRange().NeedsBody() || !BodyContains("x").NeedsBody() {
		t.Fatalf("NeedsBody mapping wrong")
	}
}

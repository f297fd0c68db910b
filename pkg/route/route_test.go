package route

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const sampleResponse = `{
  "status": "OK",
  "routes": [
    {
      "summary": "Main St",
      "legs": [
        {
          "start_address": "1 Origin Way",
          "end_address": "9 Destination Ave",
          "distance": {"text": "1.2 km", "value": 1200},
          "duration": {"text": "15 mins", "value": 900},
          "steps": [
            {
              "html_instructions": "Head <b>north</b> on <b>Main St</b>",
              "start_location": {"lat": 0, "lng": 0},
              "end_location": {"lat": 0.001, "lng": 0},
              "distance": {"text": "0.1 km", "value": 111},
              "duration": {"text": "2 mins", "value": 120}
            },
            {
              "html_instructions": "Turn <b>left</b> onto <b>Elm St</b><div style=\"font-size:0.9em\">Destination will be on the right</div>",
              "start_location": {"lat": 0.001, "lng": 0},
              "end_location": {"lat": 0.001, "lng": -0.001},
              "distance": {"text": "1.1 km", "value": 1089},
              "duration": {"text": "13 mins", "value": 780}
            }
          ]
        }
      ]
    }
  ]
}`

func TestParse(t *testing.T) {
	r, err := Parse([]byte(sampleResponse))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	steps := r.Steps()
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	if steps[0].End.Lat != 0.001 {
		t.Errorf("step end lat: got %f, want 0.001", steps[0].End.Lat)
	}
	if r.TotalDistanceMeters() != 1200 {
		t.Errorf("total distance: got %d, want 1200", r.TotalDistanceMeters())
	}
	if r.TotalDuration() != 15*time.Minute {
		t.Errorf("total duration: got %v, want 15m", r.TotalDuration())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{name: "no routes", body: `{"status":"ZERO_RESULTS","routes":[]}`, want: ErrNoRoute},
		{name: "empty routes ok status", body: `{"status":"OK","routes":[]}`, want: ErrNoRoute},
		{name: "no legs", body: `{"status":"OK","routes":[{"legs":[]}]}`, want: ErrEmptyLegs},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.body)); !errors.Is(err, tc.want) {
				t.Errorf("Parse: got %v, want %v", err, tc.want)
			}
		})
	}

	if _, err := Parse([]byte("not json")); err == nil {
		t.Error("Parse accepted malformed JSON")
	}
}

func TestSpokenSummary(t *testing.T) {
	r, err := Parse([]byte(sampleResponse))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	now := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	got := r.SpokenSummary("9 Destination Ave", now)

	for _, want := range []string{
		"Starting navigation to 9 Destination Ave",
		"1.2 km",
		"15 mins",
		"2:15 PM",
		"First direction: Head north on Main St.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q in %q", want, got)
		}
	}
}

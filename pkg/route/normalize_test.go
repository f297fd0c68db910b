package route

import (
	"testing"

	"github.com/benz16107/BlindSpot/pkg/geo"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		expect string
	}{
		{
			name:   "bold tags",
			raw:    "Turn <b>left</b> onto <b>Elm St</b>",
			expect: "Turn left onto Elm St",
		},
		{
			name:   "styled div",
			raw:    `Continue straight<div style="font-size:0.9em">Destination will be on the left</div>`,
			expect: "Continue straight Destination will be on the left",
		},
		{
			name:   "no markup",
			raw:    "Head north",
			expect: "Head north",
		},
		{
			name:   "entities and whitespace",
			raw:    "Walk&nbsp;to  <b> the crossing </b>",
			expect: "Walk to the crossing",
		},
		{
			name:   "empty",
			raw:    "",
			expect: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Clean(tc.raw); got != tc.expect {
				t.Errorf("Clean(%q): got %q, want %q", tc.raw, got, tc.expect)
			}
		})
	}
}

func TestNormalizeWithoutHeading(t *testing.T) {
	got := Normalize("Turn <b>left</b> onto <b>Elm St</b>", geo.Point{}, geo.Point{Lat: 0.001}, nil)
	if got != "Turn left onto Elm St" {
		t.Errorf("got %q, want cleaned raw text", got)
	}
}

func TestNormalizeWithHeading(t *testing.T) {
	heading := func(h float64) *float64 { return &h }

	tests := []struct {
		name     string
		raw      string
		from, to geo.Point
		heading  *float64
		expect   string
	}{
		{
			name:    "target ahead facing north",
			raw:     "Head <b>north</b>",
			from:    geo.Point{Lat: 0, Lng: 0},
			to:      geo.Point{Lat: 0.001, Lng: 0},
			heading: heading(0),
			expect:  "Head forward, that's north",
		},
		{
			name:    "target east while facing north",
			raw:     "Turn <b>right</b> onto <b>Elm St</b>",
			from:    geo.Point{Lat: 0, Lng: 0},
			to:      geo.Point{Lat: 0, Lng: 0.001},
			heading: heading(0),
			expect:  "Head right, that's east onto Elm St",
		},
		{
			name:    "target north while facing east",
			raw:     "Continue <b>toward Central Station</b>",
			from:    geo.Point{Lat: 0, Lng: 0},
			to:      geo.Point{Lat: 0.001, Lng: 0},
			heading: heading(90),
			expect:  "Head left, that's north toward Central Station",
		},
		{
			name:    "target behind",
			raw:     "Head <b>south</b> on <b>Main St</b>",
			from:    geo.Point{Lat: 0.001, Lng: 0},
			to:      geo.Point{Lat: 0, Lng: 0},
			heading: heading(0),
			expect:  "Head behind, that's south on Main St",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.raw, tc.from, tc.to, tc.heading); got != tc.expect {
				t.Errorf("Normalize: got %q, want %q", got, tc.expect)
			}
		})
	}
}

func TestStreetSuffixEarliestWins(t *testing.T) {
	// "on" appears inside "onto"-less text before "toward"
	got := streetSuffix("Continue on Main St toward the park")
	if got != " on Main St toward the park" {
		t.Errorf("streetSuffix: got %q", got)
	}
}

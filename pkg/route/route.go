// Package route models a walking route as delivered by a directions
// provider: an ordered list of legs, each an ordered list of steps that
// end at a coordinate. Routes are immutable once parsed.
package route

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/benz16107/BlindSpot/pkg/geo"
)

// Errors returned when parsing provider responses.
var (
	ErrNoRoute   = errors.New("route: no route in response")
	ErrEmptyLegs = errors.New("route: route has no legs")
)

// TextValue is a human-readable quantity with its numeric value
// (meters for distances, seconds for durations).
type TextValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

// Step is the smallest instruction unit. The raw instruction text may
// contain presentation markup; see Clean and Normalize.
type Step struct {
	Instruction string    `json:"html_instructions"`
	Start       geo.Point `json:"start_location"`
	End         geo.Point `json:"end_location"`
	Distance    TextValue `json:"distance"`
	Duration    TextValue `json:"duration"`
}

// Leg is a contiguous stretch of the route between two waypoints.
type Leg struct {
	Steps        []Step    `json:"steps"`
	Distance     TextValue `json:"distance"`
	Duration     TextValue `json:"duration"`
	StartAddress string    `json:"start_address"`
	EndAddress   string    `json:"end_address"`
}

// Route is one complete route from the directions provider.
type Route struct {
	Legs    []Leg  `json:"legs"`
	Summary string `json:"summary"`
}

type directionsResponse struct {
	Routes []Route `json:"routes"`
	Status string  `json:"status"`
}

// Parse decodes a directions API response body and returns its first
// route. The core never computes routes itself.
func Parse(body []byte) (*Route, error) {
	var resp directionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("route: decode response: %w", err)
	}
	if resp.Status != "" && resp.Status != "OK" {
		return nil, fmt.Errorf("route: provider status %q: %w", resp.Status, ErrNoRoute)
	}
	if len(resp.Routes) == 0 {
		return nil, ErrNoRoute
	}

	r := resp.Routes[0]
	if len(r.Legs) == 0 {
		return nil, ErrEmptyLegs
	}
	return &r, nil
}

// Steps returns the steps of the first leg. Turn-by-turn guidance walks
// one leg at a time.
func (r *Route) Steps() []Step {
	if r == nil || len(r.Legs) == 0 {
		return nil
	}
	return r.Legs[0].Steps
}

// TotalDistanceMeters sums step distances across all legs.
func (r *Route) TotalDistanceMeters() int {
	total := 0
	for _, leg := range r.Legs {
		total += leg.Distance.Value
	}
	return total
}

// TotalDuration sums leg durations.
func (r *Route) TotalDuration() time.Duration {
	total := 0
	for _, leg := range r.Legs {
		total += leg.Duration.Value
	}
	return time.Duration(total) * time.Second
}

// SpokenSummary builds the multi-sentence route-start announcement:
// destination, total distance, walking time, estimated arrival, and the
// first direction. It is spoken once, protected by the startup grace
// window.
func (r *Route) SpokenSummary(destination string, now time.Time) string {
	leg := r.Legs[0]

	eta := now.Add(r.TotalDuration())
	summary := fmt.Sprintf("Starting navigation to %s. Total distance %s, about %s. Estimated arrival %s.",
		destination, leg.Distance.Text, leg.Duration.Text, eta.Format("3:04 PM"))

	if len(leg.Steps) > 0 {
		summary += " First direction: " + Clean(leg.Steps[0].Instruction) + "."
	}
	return summary
}

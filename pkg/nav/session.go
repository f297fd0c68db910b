// Package nav turns a static route plus a live position stream into
// correctly timed spoken instructions. The session is a pure state
// machine: one sample in, at most one instruction out.
package nav

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/benz16107/BlindSpot/internal/log"
	"github.com/benz16107/BlindSpot/pkg/geo"
	"github.com/benz16107/BlindSpot/pkg/route"
)

// ErrEmptyRoute is returned when a route has no steps to guide along.
var ErrEmptyRoute = errors.New("nav: route has no steps")

// Sample is one GPS/compass reading. Heading is nil when the compass is
// unavailable. At is when the reading was taken; the grace window is
// measured against it, so a stale sample delivered late stays
// suppressed. A zero At falls back to the session clock. Samples are
// transient; the session keeps only derived progress.
type Sample struct {
	Lat     float64
	Lng     float64
	Heading *float64
	At      time.Time
}

// Point returns the sample's coordinate.
func (s Sample) Point() geo.Point {
	return geo.Point{Lat: s.Lat, Lng: s.Lng}
}

// Session owns one active route and a cursor into its steps. Samples are
// serialized by an internal mutex; no other concurrency control is
// needed.
type Session struct {
	cfg Config
	now func() time.Time

	mu          sync.Mutex
	active      *route.Route
	steps       []route.Step
	destination string
	cursor      int
	lastSpoken  int
	startedAt   time.Time
}

// NewSession creates a navigation session with the given thresholds.
func NewSession(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Session{cfg: cfg, now: time.Now, lastSpoken: -1}, nil
}

// StartRoute atomically replaces any active session state with the new
// route. The cursor resets to the first step and the grace window opens.
func (s *Session) StartRoute(r *route.Route, destination string) error {
	steps := r.Steps()
	if len(steps) == 0 {
		return ErrEmptyRoute
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = r
	s.steps = steps
	s.destination = destination
	s.cursor = 0
	s.lastSpoken = -1
	s.startedAt = s.now()

	log.Info("navigation started", "destination", destination, "steps", len(steps))
	return nil
}

// Stop clears the active session. Subsequent samples produce nothing.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		log.Info("navigation stopped", "destination", s.destination)
	}
	s.active = nil
	s.steps = nil
	s.destination = ""
	s.cursor = 0
	s.lastSpoken = -1
}

// Active reports whether a route is being guided.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil
}

// Destination returns the label of the active destination, or "".
func (s *Session) Destination() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destination
}

// InStartupPhase reports whether the route started less than the grace
// window ago. The arbiter uses this to keep hazard alerts from talking
// over the route summary.
func (s *Session) InStartupPhase() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil && s.now().Sub(s.startedAt) < s.cfg.StartupGrace
}

// OnPositionSample consumes one position sample and returns the
// instruction to speak, if any. Each step is announced at most once per
// threshold: one early warning below TurnWarnMeters and one imperative
// below TurnNowMeters. Sparse sampling may skip straight past the
// warning distance; the imperative branch still fires in that case.
func (s *Session) OnPositionSample(sample Sample) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return "", false
	}
	at := sample.At
	if at.IsZero() {
		at = s.now()
	}
	if at.Sub(s.startedAt) < s.cfg.StartupGrace {
		return "", false
	}
	if s.cursor >= len(s.steps) {
		// Route already finished.
		return "", false
	}

	current := s.steps[s.cursor]
	d := geo.Haversine(sample.Point(), current.End)
	log.Debug("position sample", "distance_m", fmt.Sprintf("%.1f", d), "step", s.cursor)

	next := s.cursor + 1
	if next >= len(s.steps) {
		// Cursor only reaches the last step by crossing the final turn
		// threshold. Arrival is announced like a virtual step one past
		// the end, gated by the same imperative distance as a turn,
		// which finishes the route.
		if d < s.cfg.TurnNowMeters && s.lastSpoken <= s.cursor {
			s.lastSpoken = next
			s.cursor = next
			return fmt.Sprintf("You have arrived at your destination: %s.", s.destination), true
		}
		return "", false
	}

	nextStep := s.steps[next]
	instruction := route.Normalize(nextStep.Instruction, sample.Point(), nextStep.End, sample.Heading)

	switch {
	case d < s.cfg.TurnNowMeters && s.lastSpoken <= next:
		s.lastSpoken = next
		s.cursor = next
		return instruction + " Now.", true
	case d < s.cfg.TurnWarnMeters && s.lastSpoken < next:
		s.lastSpoken = next
		return fmt.Sprintf("In %d meters, %s", int(math.Round(d)), instruction), true
	default:
		return "", false
	}
}

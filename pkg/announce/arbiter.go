// Package announce arbitrates between competing voice events: route
// instructions, hazard alerts, and the startup greeting. The arbiter is
// the single writer to the voice channel; every accepted announcement
// interrupts whatever is currently being spoken.
package announce

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benz16107/BlindSpot/internal/log"
)

// ErrNoSpeaker is returned when the arbiter has no voice output.
var ErrNoSpeaker = errors.New("announce: speaker is required")

// Speaker is the voice output boundary. The actual text-to-speech
// engine lives in an external collaborator (the phone).
type Speaker interface {
	// Speak queues text for speech.
	Speak(text string) error

	// Interrupt cancels any speech in progress.
	Interrupt() error
}

// Publisher is the data side-channel boundary. Hazard state is
// published here whether or not it was spoken, so companion displays
// stay in sync while voice is muted.
type Publisher interface {
	PublishHazard(detected bool, description string)
}

// Config holds arbiter tunables.
type Config struct {
	// GreetingPhrase is spoken once after GreetingDelay, unless an
	// alternate mode was signalled first.
	GreetingPhrase string
	GreetingDelay  time.Duration

	// HazardPhrase formats the spoken hazard alert; %s receives the
	// detector's description.
	HazardPhrase string
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		GreetingPhrase: "Where would you like to go?",
		GreetingDelay:  0,
		HazardPhrase:   "Obstacle ahead: %s",
	}
}

// Arbiter serializes announcement requests into the single voice
// channel. Concurrent requests are serialized, not merged; there is no
// queue of stale announcements.
type Arbiter struct {
	cfg       Config
	speaker   Speaker
	publisher Publisher
	inStartup func() bool

	mu         sync.Mutex
	greeted    bool
	greetSkip  bool
	greetTimer *time.Timer
}

// New creates an arbiter. inStartup reports whether the navigation
// grace window is open; a nil publisher disables the side-channel.
func New(speaker Speaker, publisher Publisher, inStartup func() bool, cfg Config) (*Arbiter, error) {
	if speaker == nil {
		return nil, ErrNoSpeaker
	}
	if inStartup == nil {
		inStartup = func() bool { return false }
	}
	return &Arbiter{
		cfg:       cfg,
		speaker:   speaker,
		publisher: publisher,
		inStartup: inStartup,
	}, nil
}

// Announce interrupts current speech and speaks the text. The
// interrupt-then-speak pair is atomic with respect to other
// announcements.
func (a *Arbiter) Announce(text string) error {
	if text == "" {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.interruptAndSpeak(text)
}

// AnnounceHazard handles a detection event. The side-channel event is
// always published; voice fires only for new hazards outside the
// startup grace window.
func (a *Arbiter) AnnounceHazard(description string, isNew bool) error {
	if a.publisher != nil {
		a.publisher.PublishHazard(true, description)
	}
	if !isNew {
		return nil
	}
	if a.inStartup() {
		log.Debug("hazard alert muted during startup grace", "description", description)
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.interruptAndSpeak(fmt.Sprintf(a.cfg.HazardPhrase, description))
}

// AnnounceClear publishes the cleared state. Clear transitions are
// never spoken.
func (a *Arbiter) AnnounceClear() {
	if a.publisher != nil {
		a.publisher.PublishHazard(false, "")
	}
}

// ScheduleGreeting arranges the one-shot greeting after the configured
// delay. A second call, or a call after SkipGreeting, does nothing.
func (a *Arbiter) ScheduleGreeting() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.greeted || a.greetSkip || a.greetTimer != nil {
		return
	}
	a.greetTimer = time.AfterFunc(a.cfg.GreetingDelay, a.speakGreeting)
}

// SkipGreeting suppresses the greeting, for externally signalled
// alternate modes such as hazard-only operation.
func (a *Arbiter) SkipGreeting() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.greetSkip = true
	if a.greetTimer != nil {
		a.greetTimer.Stop()
		a.greetTimer = nil
	}
}

// Close cancels any pending greeting.
func (a *Arbiter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.greetTimer != nil {
		a.greetTimer.Stop()
		a.greetTimer = nil
	}
}

func (a *Arbiter) speakGreeting() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.greeted || a.greetSkip {
		return
	}
	a.greeted = true
	if err := a.interruptAndSpeak(a.cfg.GreetingPhrase); err != nil {
		log.Warn("greeting failed", "error", err)
	}
}

// interruptAndSpeak must be called with the mutex held.
func (a *Arbiter) interruptAndSpeak(text string) error {
	if err := a.speaker.Interrupt(); err != nil {
		log.Warn("interrupt failed", "error", err)
	}
	if err := a.speaker.Speak(text); err != nil {
		return fmt.Errorf("announce: speak: %w", err)
	}
	log.Info("announced", "text", text)
	return nil
}

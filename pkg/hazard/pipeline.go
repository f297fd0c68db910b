package hazard

import (
	"errors"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/benz16107/BlindSpot/internal/log"
)

// Config holds the pipeline tunables.
type Config struct {
	// QueueCapacity bounds the pending-frame buffer. Overflow evicts
	// the oldest frame so the newest is always processed.
	QueueCapacity int

	// PollInterval bounds how long the worker waits before rechecking
	// the stop signal, so Stop completes promptly.
	PollInterval time.Duration

	// MinFrameBytes rejects obviously truncated frames before decoding.
	MinFrameBytes int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 2,
		PollInterval:  500 * time.Millisecond,
		MinFrameBytes: 100,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.QueueCapacity < 1 {
		return errors.New("hazard: queue capacity must be at least 1")
	}
	if c.PollInterval <= 0 {
		return errors.New("hazard: poll interval must be positive")
	}
	if c.MinFrameBytes < 0 {
		return errors.New("hazard: min frame bytes must not be negative")
	}
	return nil
}

// Callbacks receive debounced detection events from the worker
// goroutine. OnHazard fires for every frame with a detection; isNew is
// true only on the clear-to-present transition. OnClear fires once per
// present-to-clear transition.
type Callbacks struct {
	OnHazard func(description string, isNew bool)
	OnClear  func()
}

// Pipeline consumes encoded camera frames through a bounded drop-oldest
// queue and runs the configured detector on a background worker.
type Pipeline struct {
	cfg Config
	det Detector
	cbs Callbacks

	mu           sync.Mutex
	queue        *frameQueue
	running      bool
	lastPresence bool
	processed    uint64
	stop         chan struct{}
	done         chan struct{}
	notify       chan struct{}
}

// New creates a pipeline around an already selected detector.
func New(det Detector, cfg Config, cbs Callbacks) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if det == nil {
		return nil, errors.New("hazard: detector is required")
	}
	return &Pipeline{
		cfg:   cfg,
		det:   det,
		cbs:   cbs,
		queue: newFrameQueue(cfg.QueueCapacity),
	}, nil
}

// Start launches the background worker. Calling Start on a running
// pipeline is a no-op.
func (p *Pipeline) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	p.notify = make(chan struct{}, 1)

	go p.run(p.stop, p.done, p.notify)
	log.Info("hazard pipeline started", "detector", p.det.Name())
}

// Stop signals the worker, waits for it to quiesce, and resets
// detection state. Safe to call while a frame is mid-processing; the
// worker observes the signal within one poll interval.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	stop, done := p.stop, p.done
	p.mu.Unlock()

	close(stop)
	<-done

	p.mu.Lock()
	p.queue.clear()
	p.lastPresence = false
	processed := p.processed
	p.processed = 0
	p.mu.Unlock()

	log.Info("hazard pipeline stopped", "frames_processed", processed)
}

// Running reports whether the worker is active.
func (p *Pipeline) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// FramesProcessed returns the number of frames run through the detector
// since the last Start.
func (p *Pipeline) FramesProcessed() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed
}

// Submit enqueues an encoded frame without blocking. When the queue is
// full the oldest pending frame is evicted. Frames submitted while the
// pipeline is stopped are ignored.
func (p *Pipeline) Submit(frame []byte) {
	if len(frame) == 0 {
		return
	}

	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		log.Debug("frame ignored, pipeline not running")
		return
	}
	dropped := p.queue.push(frame)
	notify := p.notify
	p.mu.Unlock()

	if dropped {
		log.Debug("frame queue full, dropped oldest")
	}
	select {
	case notify <- struct{}{}:
	default:
	}
}

// run is the worker loop. It drains the queue whenever woken and polls
// the stop signal with a bounded wait.
func (p *Pipeline) run(stop, done chan struct{}, notify chan struct{}) {
	defer close(done)

	timer := time.NewTimer(p.cfg.PollInterval)
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-notify:
		case <-timer.C:
		}

		for {
			select {
			case <-stop:
				return
			default:
			}

			p.mu.Lock()
			frame, ok := p.queue.pop()
			p.mu.Unlock()
			if !ok {
				break
			}
			p.processFrame(frame, stop)
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(p.cfg.PollInterval)
	}
}

// processFrame decodes and detects on one frame. Any failure is logged
// and skipped; it never stops the worker.
func (p *Pipeline) processFrame(frame []byte, stop chan struct{}) {
	if len(frame) < p.cfg.MinFrameBytes {
		log.Debug("frame rejected, too small", "bytes", len(frame))
		return
	}

	img, err := gocv.IMDecode(frame, gocv.IMReadColor)
	if err != nil {
		log.Debug("frame decode failed", "bytes", len(frame), "error", err)
		return
	}
	defer img.Close()
	if img.Empty() {
		log.Debug("frame decoded empty", "bytes", len(frame))
		return
	}

	label, found, err := p.det.Detect(img)
	if err != nil {
		// A detector failure counts as no detection for this frame only.
		log.Warn("detector error", "error", err)
		found = false
	}

	// No events once stop has been signalled.
	select {
	case <-stop:
		return
	default:
	}

	p.mu.Lock()
	p.processed++
	processed := p.processed
	wasPresent := p.lastPresence
	p.lastPresence = found
	p.mu.Unlock()

	if processed%25 == 0 {
		log.Info("hazard pipeline alive", "frames_processed", processed)
	}

	if found {
		isNew := !wasPresent
		log.Info("obstacle detected", "description", label, "new", isNew, "frame", processed)
		if p.cbs.OnHazard != nil {
			p.cbs.OnHazard(label, isNew)
		}
		return
	}

	if wasPresent {
		log.Debug("path clear", "frame", processed)
		if p.cbs.OnClear != nil {
			p.cbs.OnClear()
		}
	}
}

// Package gameserver drives matches in real time.
package gameserver

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/match"
)

// Simulation is the part of a match the driver needs.
type Simulation interface {
	Tick(delta float64)
	Pause()
	Resume()
	State() match.State
	Result() (match.Result, bool)
	Snapshot() match.Snapshot
	DrainEffects() []character.EffectRequest
}

// DriverConfig tunes the frame loop.
type DriverConfig struct {
	// FrameRate is ticks per second.
	FrameRate int
	// MaxDelta caps the seconds passed to a single Tick.
	MaxDelta float64
}

// Validate reports a config the driver cannot run with.
func (c DriverConfig) Validate() error {
	if c.FrameRate <= 0 {
		return fmt.Errorf("gameserver: frame rate must be > 0, got %d", c.FrameRate)
	}
	if c.MaxDelta <= 0 {
		return fmt.Errorf("gameserver: max delta must be > 0, got %v", c.MaxDelta)
	}
	return nil
}

type command int

const (
	cmdPause command = iota
	cmdResume
)

// Option customizes a FrameDriver.
type Option func(*FrameDriver)

// WithNow replaces the wall clock used to measure frame deltas.
func WithNow(now func() time.Time) Option {
	return func(d *FrameDriver) { d.now = now }
}

// FrameDriver owns the only goroutine that touches its simulation. Each frame
// it measures wall-clock delta, ticks the simulation and fans the resulting
// snapshot out to subscribers.
//
// Invariant: the simulation is only called from Run's goroutine.
type FrameDriver struct {
	sim      Simulation
	cfg      DriverConfig
	logger   *zap.Logger
	now      func() time.Time
	cmds     chan command
	done     chan match.Result
	finished chan struct{}

	mu          sync.Mutex
	subscribers map[chan<- match.Snapshot]struct{}
	frames      uint64
}

// NewFrameDriver creates a stopped driver for sim.
//
// Precondition: sim must not be nil; cfg must pass Validate.
// Postcondition: Returns an error for an invalid cfg.
func NewFrameDriver(sim Simulation, cfg DriverConfig, logger *zap.Logger, opts ...Option) (*FrameDriver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &FrameDriver{
		sim:         sim,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
		cmds:        make(chan command, 16),
		done:        make(chan match.Result, 1),
		finished:    make(chan struct{}),
		subscribers: make(map[chan<- match.Snapshot]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Subscribe registers ch to receive a snapshot after every frame.
// If ch is full, the snapshot is dropped for that subscriber.
//
// Precondition: ch must not be nil.
func (d *FrameDriver) Subscribe(ch chan<- match.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers[ch] = struct{}{}
}

// Unsubscribe removes ch from the subscriber list.
func (d *FrameDriver) Unsubscribe(ch chan<- match.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.subscribers, ch)
}

// Frames returns how many frames have ticked the simulation.
func (d *FrameDriver) Frames() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

// Pause asks the driver goroutine to pause the simulation.
func (d *FrameDriver) Pause() { d.send(cmdPause) }

// Resume asks the driver goroutine to resume the simulation.
func (d *FrameDriver) Resume() { d.send(cmdResume) }

func (d *FrameDriver) send(c command) {
	select {
	case d.cmds <- c:
	case <-d.finished:
	}
}

// Done delivers the match result once the simulation ends. It is closed when
// Run returns; a driver stopped by its context closes it without a value.
func (d *FrameDriver) Done() <-chan match.Result { return d.done }

// Run ticks the simulation at FrameRate until it ends or ctx is cancelled.
//
// Precondition: Run is called at most once.
// Postcondition: returns nil in both cases; Done() is closed.
func (d *FrameDriver) Run(ctx context.Context) error {
	defer close(d.done)
	defer close(d.finished)

	interval := time.Duration(float64(time.Second) / float64(d.cfg.FrameRate))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.logger.Info("frame driver started", zap.Int("frame_rate", d.cfg.FrameRate), zap.Float64("max_delta", d.cfg.MaxDelta))
	last := d.now()
	paused := false
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("frame driver stopped", zap.Uint64("frames", d.Frames()))
			return nil
		case c := <-d.cmds:
			switch c {
			case cmdPause:
				if !paused {
					paused = true
					d.sim.Pause()
					d.publish()
				}
			case cmdResume:
				if paused {
					paused = false
					d.sim.Resume()
					last = d.now()
				}
			}
		case <-ticker.C:
			if paused {
				continue
			}
			now := d.now()
			delta := math.Min(now.Sub(last).Seconds(), d.cfg.MaxDelta)
			last = now
			d.sim.Tick(math.Max(0, delta))
			d.mu.Lock()
			d.frames++
			d.mu.Unlock()
			d.publish()

			if d.sim.State() == match.Ended {
				if r, ok := d.sim.Result(); ok {
					d.logger.Info("match finished", zap.Stringer("outcome", r.Outcome), zap.Int("duration", r.Duration))
					d.done <- r
				}
				return nil
			}
		}
	}
}

// publish attaches the effects queued this frame to the snapshot and offers
// it to every subscriber. A subscriber that is not ready misses the frame,
// effects included.
func (d *FrameDriver) publish() {
	snap := d.sim.Snapshot()
	snap.Effects = d.sim.DrainEffects()
	d.mu.Lock()
	subs := make([]chan<- match.Snapshot, 0, len(d.subscribers))
	for ch := range d.subscribers {
		subs = append(subs, ch)
	}
	d.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

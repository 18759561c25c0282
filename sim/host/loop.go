// Package host drives a sim.Engine from a frame clock.
//
// A Loop owns the only reference to its engine. Ticks and commands run on
// the Loop's goroutine, so a command always lands strictly between two ticks
// and callers never touch engine state concurrently.
package host

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"

	"github.com/inference-sim/booth-sim/sim"
)

// DefaultFrame is the frame period used when NewLoop is given zero.
const DefaultFrame = 16 * time.Millisecond

// ErrLoopStopped is returned by commands issued after Run has returned.
var ErrLoopStopped = errors.New("host loop stopped")

type command struct {
	apply func(*sim.Engine) error
	done  chan error
}

// Loop ticks an engine once per frame of a clock and serializes commands.
type Loop struct {
	engine   *sim.Engine
	clock    clock.WithTicker
	frame    time.Duration
	commands chan command
	stopped  chan struct{}
	onFrame  func(sim.Snapshot)
}

// NewLoop creates a loop for engine. The loop takes ownership of engine;
// callers must not use it directly once Run starts.
func NewLoop(engine *sim.Engine, c clock.WithTicker, frame time.Duration) *Loop {
	if c == nil {
		c = clock.RealClock{}
	}
	if frame <= 0 {
		frame = DefaultFrame
	}
	return &Loop{
		engine:   engine,
		clock:    c,
		frame:    frame,
		commands: make(chan command),
		stopped:  make(chan struct{}),
	}
}

// OnFrame registers fn to receive a snapshot after every frame. It must be
// called before Run; fn runs on the loop goroutine and should not block.
func (l *Loop) OnFrame(fn func(sim.Snapshot)) {
	l.onFrame = fn
}

// Run ticks the engine until ctx is done. The real delta of each tick is the
// clock time elapsed since the previous frame.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.stopped)

	ticker := l.clock.NewTicker(l.frame)
	defer ticker.Stop()
	last := l.clock.Now()
	logrus.Infof("[host] frame loop started (frame=%s)", l.frame)

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("[host] frame loop stopped: %v", ctx.Err())
			return ctx.Err()
		case cmd := <-l.commands:
			cmd.done <- cmd.apply(l.engine)
		case <-ticker.C():
			now := l.clock.Now()
			delta := now.Sub(last).Seconds()
			last = now
			l.engine.Tick(delta)
			if l.onFrame != nil {
				l.onFrame(l.engine.Snapshot())
			}
		}
	}
}

// Do runs fn against the engine between two ticks and returns its error.
func (l *Loop) Do(ctx context.Context, fn func(*sim.Engine) error) error {
	cmd := command{apply: fn, done: make(chan error, 1)}
	select {
	case l.commands <- cmd:
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pause stops simulated time.
func (l *Loop) Pause(ctx context.Context) error {
	return l.Do(ctx, func(e *sim.Engine) error { e.Pause(); return nil })
}

// Resume restarts simulated time.
func (l *Loop) Resume(ctx context.Context) error {
	return l.Do(ctx, func(e *sim.Engine) error { e.Resume(); return nil })
}

// Reset restarts the run with cfg. An invalid cfg leaves the run untouched.
func (l *Loop) Reset(ctx context.Context, cfg sim.SimulationConfig) error {
	return l.Do(ctx, func(e *sim.Engine) error { return e.Reset(cfg) })
}

// SetServerCount changes the booth count.
func (l *Loop) SetServerCount(ctx context.Context, n int) error {
	return l.Do(ctx, func(e *sim.Engine) error { return e.SetServerCount(n) })
}

// Snapshot returns the current engine view.
func (l *Loop) Snapshot(ctx context.Context) (sim.Snapshot, error) {
	var snap sim.Snapshot
	err := l.Do(ctx, func(e *sim.Engine) error {
		snap = e.Snapshot()
		return nil
	})
	return snap, err
}

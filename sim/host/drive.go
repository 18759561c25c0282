package host

import (
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/booth-sim/sim"
)

// StopReason says why Drive returned.
type StopReason string

const (
	StoppedByCondition  StopReason = "condition"
	StoppedByPause      StopReason = "paused"
	StoppedByFrameLimit StopReason = "frame-limit"
)

// StopCondition reports whether a headless run is finished.
type StopCondition func(*sim.Engine) bool

// UntilCompleted stops once n passengers have been served.
func UntilCompleted(n int) StopCondition {
	return func(e *sim.Engine) bool { return e.Metrics().Completed >= n }
}

// UntilClock stops once simulated time reaches seconds.
func UntilClock(seconds float64) StopCondition {
	return func(e *sim.Engine) bool { return e.Clock() >= seconds }
}

// UntilDrained stops once an exact schedule has been fully served.
func UntilDrained() StopCondition {
	return func(e *sim.Engine) bool { return e.Drained() }
}

// Any stops as soon as one of conds does. Nil conditions are ignored.
func Any(conds ...StopCondition) StopCondition {
	return func(e *sim.Engine) bool {
		for _, c := range conds {
			if c != nil && c(e) {
				return true
			}
		}
		return false
	}
}

// Drive ticks e with a fixed real delta of frameSeconds, without a clock,
// until stop holds, the engine pauses itself, or maxFrames frames have run
// (maxFrames <= 0 means unbounded). It returns the frames run and the reason.
func Drive(e *sim.Engine, frameSeconds float64, stop StopCondition, maxFrames int) (int, StopReason) {
	if stop == nil {
		stop = func(*sim.Engine) bool { return false }
	}
	frames := 0
	for {
		if stop(e) {
			return frames, StoppedByCondition
		}
		if e.Paused() {
			logrus.Debugf("[host] engine paused after %d frames", frames)
			return frames, StoppedByPause
		}
		if maxFrames > 0 && frames >= maxFrames {
			logrus.Warnf("[host] frame limit %d reached at %.1fs simulated", maxFrames, e.Clock())
			return frames, StoppedByFrameLimit
		}
		e.Tick(frameSeconds)
		frames++
	}
}

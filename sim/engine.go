// sim/engine.go
package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/booth-sim/sim/trace"
)

// MaxRealDeltaSeconds caps the real time a single tick may consume before it
// is scaled by the speed multiplier, so a stalled host frame cannot advance
// the simulation by an arbitrary amount.
const MaxRealDeltaSeconds = 0.05

// Engine is the queueing state machine. It owns every job, booth, clock and
// accumulator of one run; hosts hold the only reference, call Tick once per
// frame and read Snapshot between ticks.
//
// Thread-safety: NOT thread-safe. Commands (Pause, Resume, Reset,
// SetServerCount) must be issued from the goroutine that calls Tick.
type Engine struct {
	cfg   SimulationConfig
	runID string

	rng        *PartitionedRNG
	serviceRNG *rand.Rand
	source     ArrivalSource

	clock   float64 // simulated seconds
	tick    int64   // ticks that advanced time
	nextSeq int64   // next arrival sequence number

	waitQ   *WaitQueue
	servers *ServerPool
	metrics *Metrics

	reference ReferenceModel
	paused    bool
	concluded bool // auto-conclusion already fired this run

	trace *trace.SimulationTrace // nil unless cfg.TraceLevel records events
}

// NewEngine validates cfg and builds an engine ready for its first tick.
// An invalid configuration is rejected with an error wrapping ErrInvalidConfig.
func NewEngine(cfg SimulationConfig) (*Engine, error) {
	e := &Engine{}
	if err := e.Reset(cfg); err != nil {
		return nil, err
	}
	return e, nil
}

// Reset reinitializes all engine and metrics state from cfg and samples a
// new first arrival. Calling Reset twice with the same cfg (including Seed)
// reproduces the same event sequence. If cfg is invalid the engine is left
// untouched and the error is returned.
func (e *Engine) Reset(cfg SimulationConfig) error {
	cfg = cfg.normalized()
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg.ArrivalTimestamps = append([]float64(nil), cfg.ArrivalTimestamps...)
	cfg.ServiceDurations = append([]float64(nil), cfg.ServiceDurations...)

	rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed))
	source, start := newArrivalSource(cfg, rng)

	*e = Engine{
		cfg:        cfg,
		runID:      uuid.NewString(),
		rng:        rng,
		serviceRNG: rng.ForSubsystem(SubsystemService),
		source:     source,
		clock:      start,
		waitQ:      &WaitQueue{},
		servers:    NewServerPool(cfg.ServerCount),
		metrics:    NewMetrics(cfg.RollingWindow),
		reference:  ComputeReference(cfg.ArrivalRatePerMinute, cfg.MeanServiceSeconds, cfg.ServiceCV, cfg.ServerCount),
	}
	if cfg.TraceLevel.Enabled() {
		e.trace = trace.NewSimulationTrace(e.runID)
	}

	logrus.Infof("[engine] reset run=%s mode=%s servers=%d λ=%.3f/min E[S]=%.2fs CV=%.2f first arrival=%.3fs clock=%.3fs",
		e.runID, source.Mode(), cfg.ServerCount, cfg.ArrivalRatePerMinute, cfg.MeanServiceSeconds, cfg.ServiceCV,
		source.NextArrival(), e.clock)
	if !e.reference.Stable {
		logrus.Warnf("[engine] reference model inactive or unstable (ρ=%.3f)", e.reference.Rho)
	}
	return nil
}

// Tick advances simulated time by min(realDelta, MaxRealDeltaSeconds) ×
// SpeedMultiplier and runs the completion, arrival and assignment passes in
// that order. It does nothing while paused and reports whether time advanced.
func (e *Engine) Tick(realDelta float64) bool {
	if e.paused {
		return false
	}
	if !(realDelta > 0) {
		realDelta = 0
	}
	e.advance(min(realDelta, MaxRealDeltaSeconds) * e.cfg.SpeedMultiplier)
	return true
}

func (e *Engine) advance(dt float64) {
	e.tick++
	e.clock += dt
	now := e.clock

	e.completionPass(now)
	e.arrivalPass(now)
	e.assignmentPass(now)
	e.checkConclusion()
}

// completionPass frees every booth whose job ends at or before now.
func (e *Engine) completionPass(now float64) {
	for _, slot := range e.servers.Slots() {
		if !slot.Busy() || slot.BusyUntil > now {
			continue
		}
		job := e.servers.release(slot.Index)
		e.metrics.RecordWait(job.Wait())
		e.recordCompletion(job, now)
	}
	e.servers.compact()
}

// arrivalPass admits every arrival due at or before now.
func (e *Engine) arrivalPass(now float64) {
	for _, a := range e.source.Admit(now) {
		job := newJob(e.nextSeq, a.At, a.FixedService)
		e.nextSeq++
		e.waitQ.Enqueue(job)
		e.recordAdmission(job, now)
	}
}

// assignmentPass hands the front of the line to free booths in index order.
func (e *Engine) assignmentPass(now float64) {
	slots := e.servers.Slots()
	for i := 0; i < e.servers.Active() && e.waitQ.Len() > 0; i++ {
		if slots[i].Busy() {
			continue
		}
		job := e.waitQ.Dequeue()
		duration, fixed := e.serviceDuration(job)
		e.servers.assign(i, job, now, duration)
		e.recordAssignment(job, fixed)
	}
}

// serviceDuration returns the schedule duration when present, else a
// log-normal sample, floored to MinServiceSeconds either way.
func (e *Engine) serviceDuration(job *Job) (float64, bool) {
	if job.FixedService > 0 {
		return ClampServiceDuration(job.FixedService), true
	}
	return ClampServiceDuration(SampleLogNormal(e.serviceRNG, e.cfg.MeanServiceSeconds, e.cfg.ServiceCV)), false
}

func (e *Engine) checkConclusion() {
	if e.concluded || e.cfg.AutoConclusionAt <= 0 || e.metrics.Completed < e.cfg.AutoConclusionAt {
		return
	}
	e.concluded = true
	e.paused = true
	logrus.Infof("[engine] %d passengers served at %.1fs; pausing for conclusion", e.metrics.Completed, e.clock)
}

// === Commands ===

// Pause suspends ticking; no time advances and no side effects occur.
func (e *Engine) Pause() { e.paused = true }

// Resume re-enables ticking.
func (e *Engine) Resume() { e.paused = false }

// Paused reports whether ticks are currently ignored.
func (e *Engine) Paused() bool { return e.paused }

// SetServerCount changes the booth count at runtime. Growing adds free booths
// that start serving on the next tick. Shrinking never interrupts a service:
// removed booths finish their current passenger and take no new ones.
func (e *Engine) SetServerCount(n int) error {
	if n < 1 {
		return invalidf("server count must be >= 1, got %d", n)
	}
	e.servers.Resize(n)
	e.cfg.ServerCount = n
	e.reference = ComputeReference(e.cfg.ArrivalRatePerMinute, e.cfg.MeanServiceSeconds, e.cfg.ServiceCV, n)
	logrus.Infof("[engine] server count set to %d at %.3fs (ρ=%.3f)", n, e.clock, e.reference.Rho)
	return nil
}

// === Read-only accessors ===

// Clock returns the simulated time in seconds.
func (e *Engine) Clock() float64 { return e.clock }

// Ticks returns the number of ticks that advanced time.
func (e *Engine) Ticks() int64 { return e.tick }

// RunID identifies the current run; it changes on every Reset.
func (e *Engine) RunID() string { return e.runID }

// Config returns the active configuration (reflecting SetServerCount).
func (e *Engine) Config() SimulationConfig {
	c := e.cfg
	c.ArrivalTimestamps = append([]float64(nil), e.cfg.ArrivalTimestamps...)
	c.ServiceDurations = append([]float64(nil), e.cfg.ServiceDurations...)
	return c
}

// Metrics returns the run's aggregator. Callers MUST NOT record into it.
func (e *Engine) Metrics() *Metrics { return e.metrics }

// Reference returns the analytical baseline for the active configuration.
func (e *Engine) Reference() ReferenceModel { return e.reference }

// Trace returns the event trace, or nil when tracing is disabled.
func (e *Engine) Trace() *trace.SimulationTrace { return e.trace }

// ConclusionReady reports whether the auto-conclusion threshold was reached.
func (e *Engine) ConclusionReady() bool { return e.concluded }

// QueueLength returns the number of passengers waiting.
func (e *Engine) QueueLength() int { return e.waitQ.Len() }

// InSystem returns the number of passengers queued or in service.
func (e *Engine) InSystem() int { return e.waitQ.Len() + e.servers.BusyCount() }

// Drained reports whether an exact schedule has been fully admitted and
// every passenger has left. Stochastic runs never drain.
func (e *Engine) Drained() bool {
	return math.IsInf(e.source.NextArrival(), 1) && e.InSystem() == 0
}

func (e *Engine) String() string {
	return fmt.Sprintf("Engine: (run: %s, clock: %.3fs, queue: %d, busy: %d/%d, served: %d)",
		e.runID, e.clock, e.waitQ.Len(), e.servers.BusyCount(), e.servers.Active(), e.metrics.Completed)
}

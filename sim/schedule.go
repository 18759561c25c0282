package sim

import (
	"math"
	"math/rand"
)

// ScheduleMode identifies how arrivals are produced for a run.
type ScheduleMode string

const (
	ModeStochastic ScheduleMode = "stochastic"
	ModeExact      ScheduleMode = "exact"
)

// fastForwardGap and fastForwardLead control the idle-start skip: when the
// first stochastic arrival is more than fastForwardGap seconds away, the
// clock jumps to fastForwardLead seconds before it. Purely cosmetic.
const (
	fastForwardGap  = 5.0
	fastForwardLead = 0.05
)

// Arrival is one admission produced by an ArrivalSource.
type Arrival struct {
	At           float64 // scheduled arrival time
	FixedService float64 // schedule-provided service duration; <= 0 means "sample"
}

// ArrivalSource produces arrivals as simulated time advances.
// The active source is fixed for the lifetime of one run.
type ArrivalSource interface {
	// Admit returns every arrival scheduled at or before now, in order.
	Admit(now float64) []Arrival
	// NextArrival returns the time of the next pending arrival, or +Inf.
	NextArrival() float64
	// Mode reports which variant this is.
	Mode() ScheduleMode
}

// StochasticSource generates a Poisson arrival process.
type StochasticSource struct {
	ratePerSecond float64
	next          float64
	rng           *rand.Rand
}

// NewStochasticSource creates a Poisson source at ratePerMinute and samples
// the first arrival time.
func NewStochasticSource(ratePerMinute float64, rng *rand.Rand) *StochasticSource {
	s := &StochasticSource{ratePerSecond: ratePerMinute / 60, rng: rng}
	s.next = SampleExponential(rng, s.ratePerSecond)
	return s
}

func (s *StochasticSource) Admit(now float64) []Arrival {
	var out []Arrival
	for now >= s.next {
		out = append(out, Arrival{At: s.next})
		s.next += SampleExponential(s.rng, s.ratePerSecond)
	}
	return out
}

func (s *StochasticSource) NextArrival() float64 { return s.next }

func (s *StochasticSource) Mode() ScheduleMode { return ModeStochastic }

// ExactSource replays a pre-recorded arrival schedule.
type ExactSource struct {
	arrivals []float64
	services []float64
	cursor   int
}

// NewExactSource creates a replay source. Inputs must already be validated
// (non-decreasing, finite); they are copied.
func NewExactSource(arrivals, services []float64) *ExactSource {
	return &ExactSource{
		arrivals: append([]float64(nil), arrivals...),
		services: append([]float64(nil), services...),
	}
}

func (s *ExactSource) Admit(now float64) []Arrival {
	var out []Arrival
	for s.cursor < len(s.arrivals) && now >= s.arrivals[s.cursor] {
		a := Arrival{At: s.arrivals[s.cursor]}
		if s.cursor < len(s.services) {
			if d := s.services[s.cursor]; d > 0 && !math.IsInf(d, 0) {
				a.FixedService = d
			}
		}
		out = append(out, a)
		s.cursor++
	}
	return out
}

func (s *ExactSource) NextArrival() float64 {
	if s.cursor >= len(s.arrivals) {
		return math.Inf(1)
	}
	return s.arrivals[s.cursor]
}

func (s *ExactSource) Mode() ScheduleMode { return ModeExact }

// Remaining returns how many scheduled arrivals have not been admitted yet.
func (s *ExactSource) Remaining() int {
	return len(s.arrivals) - s.cursor
}

// newArrivalSource selects the source for cfg. The returned start clock is
// the fast-forwarded time for stochastic runs, else 0.
func newArrivalSource(cfg SimulationConfig, rng *PartitionedRNG) (ArrivalSource, float64) {
	if cfg.HasSchedule() {
		return NewExactSource(cfg.ArrivalTimestamps, cfg.ServiceDurations), 0
	}
	src := NewStochasticSource(cfg.ArrivalRatePerMinute, rng.ForSubsystem(SubsystemArrivals))
	start := 0.0
	if !cfg.DisableFastForward && src.NextArrival() > fastForwardGap {
		start = max(0, src.NextArrival()-fastForwardLead)
	}
	return src, start
}

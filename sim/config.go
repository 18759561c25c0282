package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/booth-sim/sim/trace"
)

// ErrInvalidConfig is wrapped by every configuration rejection. Hosts use
// errors.Is to tell a bad parameter set apart from other failures.
var ErrInvalidConfig = errors.New("invalid simulation config")

const (
	// DefaultSpeedMultiplier runs simulated time at wall-clock pace.
	DefaultSpeedMultiplier = 1.0
	// DefaultSLATargetMinutes is the waiting-time objective used when none is given.
	DefaultSLATargetMinutes = 15.0
	// DefaultAutoConclusionAt pauses a run once this many passengers are served.
	DefaultAutoConclusionAt = 200
)

// SimulationConfig is the immutable parameter set of one run.
//
// When ArrivalTimestamps is non-empty the run is in exact-schedule mode and
// ArrivalRatePerMinute only feeds the analytical reference model. A positive
// ServiceDurations[i] overrides the sampled service time of arrival i.
type SimulationConfig struct {
	ArrivalRatePerMinute float64 // λ, passengers per minute (stochastic mode)
	MeanServiceSeconds   float64 // E[S]
	ServiceCV            float64 // coefficient of variation of S
	ServerCount          int     // booths; 0 is treated as 1
	SpeedMultiplier      float64 // simulated seconds per real second
	SLATargetMinutes     float64 // waiting-time objective

	ArrivalTimestamps []float64 // seconds since the first arrival, non-decreasing
	ServiceDurations  []float64 // parallel to ArrivalTimestamps; <= 0 means "sample"

	Seed               int64
	RollingWindow      int  // wait samples kept for P95/SLA; 0 = DefaultWindowCapacity
	AutoConclusionAt   int  // completions before the run pauses itself; 0 disables
	DisableFastForward bool // skip the idle-start fast-forward in stochastic mode

	TraceLevel trace.TraceLevel // "" or "none" disables event tracing
}

// DefaultSimulationConfig returns the parameter set a host starts from before
// applying user input.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		ArrivalRatePerMinute: 2.0,
		MeanServiceSeconds:   45,
		ServiceCV:            0.5,
		ServerCount:          1,
		SpeedMultiplier:      DefaultSpeedMultiplier,
		SLATargetMinutes:     DefaultSLATargetMinutes,
		Seed:                 42,
		RollingWindow:        DefaultWindowCapacity,
		AutoConclusionAt:     DefaultAutoConclusionAt,
	}
}

// HasSchedule reports whether the run replays an exact arrival schedule.
func (c SimulationConfig) HasSchedule() bool {
	return len(c.ArrivalTimestamps) > 0
}

// Mode returns the arrival mode selected by this configuration.
func (c SimulationConfig) Mode() ScheduleMode {
	if c.HasSchedule() {
		return ModeExact
	}
	return ModeStochastic
}

// normalized returns a copy with zero-valued optional fields defaulted.
func (c SimulationConfig) normalized() SimulationConfig {
	if c.ServerCount == 0 {
		logrus.Warnf("server count not set; using 1 booth")
		c.ServerCount = 1
	}
	if c.RollingWindow == 0 {
		c.RollingWindow = DefaultWindowCapacity
	}
	return c
}

// Validate checks the configuration against the activation rules. Every
// returned error wraps ErrInvalidConfig.
func (c SimulationConfig) Validate() error {
	if c.ServerCount < 1 {
		return invalidf("server count must be >= 1, got %d", c.ServerCount)
	}
	if err := validateFinitePositive("mean service seconds", c.MeanServiceSeconds); err != nil {
		return err
	}
	if math.IsNaN(c.ServiceCV) || math.IsInf(c.ServiceCV, 0) || c.ServiceCV < 0 {
		return invalidf("service CV must be a finite non-negative number, got %f", c.ServiceCV)
	}
	if err := validateFinitePositive("speed multiplier", c.SpeedMultiplier); err != nil {
		return err
	}
	if math.IsNaN(c.SLATargetMinutes) || math.IsInf(c.SLATargetMinutes, 0) || c.SLATargetMinutes < 0 {
		return invalidf("SLA target must be a finite non-negative number of minutes, got %f", c.SLATargetMinutes)
	}
	if c.RollingWindow < 0 {
		return invalidf("rolling window must be non-negative, got %d", c.RollingWindow)
	}
	if c.AutoConclusionAt < 0 {
		return invalidf("auto-conclusion threshold must be non-negative, got %d", c.AutoConclusionAt)
	}
	if !trace.IsValidTraceLevel(string(c.TraceLevel)) {
		return invalidf("unknown trace level %q", c.TraceLevel)
	}
	if c.HasSchedule() {
		return validateSchedule(c.ArrivalTimestamps, c.ServiceDurations)
	}
	if len(c.ServiceDurations) > 0 {
		return invalidf("service durations given without arrival timestamps")
	}
	return validateFinitePositive("arrival rate per minute", c.ArrivalRatePerMinute)
}

func validateSchedule(arrivals, services []float64) error {
	prev := math.Inf(-1)
	for i, at := range arrivals {
		if math.IsNaN(at) || math.IsInf(at, 0) || at < 0 {
			return invalidf("arrival timestamp[%d] must be a finite non-negative number, got %f", i, at)
		}
		if at < prev {
			return invalidf("arrival timestamps must be non-decreasing: [%d]=%f < [%d]=%f", i, at, i-1, prev)
		}
		prev = at
	}
	if len(services) > len(arrivals) {
		return invalidf("%d service durations for %d arrivals", len(services), len(arrivals))
	}
	for i, d := range services {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return invalidf("service duration[%d] must be finite, got %f", i, d)
		}
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return invalidf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return invalidf("%s must be positive, got %f", name, val)
	}
	return nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

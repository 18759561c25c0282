package workload

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/inference-sim/booth-sim/sim"
)

// Fallbacks and clamps applied when deriving parameters from data.
const (
	DefaultDerivedMeanSeconds = 45.0
	DefaultDerivedCV          = 0.5

	minDerivedRatePerMinute = 0.01
	minDerivedCV            = 0.01
	maxDerivedCV            = 5.0
	minArrivalWindowSeconds = 1.0
	minPerHour              = 1.0

	// MinDeriveSamples is the smallest arrival or service sample count from
	// which statistics are estimated.
	MinDeriveSamples = 3
)

// Derived holds model parameters estimated from data.
type Derived struct {
	ArrivalRatePerMinute float64 `json:"arrival_rate_per_minute"`
	MeanServiceSeconds   float64 `json:"mean_service_seconds"`
	ServiceCV            float64 `json:"service_cv"`
	// ServiceFromData is false when the service defaults were used.
	ServiceFromData bool `json:"service_from_data"`

	// ArrivalsSec and ServicesSec are the rebased replay schedule; both are
	// nil for a uniform quick setup.
	ArrivalsSec []float64 `json:"arrivals_sec,omitempty"`
	ServicesSec []float64 `json:"services_sec,omitempty"`
}

// DeriveFromSchedule estimates λ from the arrival window and E[S], CV from
// the positive service durations. With fewer than MinDeriveSamples durations
// the service defaults (45s, CV 0.5) are used.
func DeriveFromSchedule(s *Schedule) (Derived, error) {
	if s == nil || s.Len() < MinDeriveSamples {
		n := 0
		if s != nil {
			n = s.Len()
		}
		return Derived{}, fmt.Errorf("need at least %d arrivals to derive parameters, got %d", MinDeriveSamples, n)
	}
	n := s.Len()
	window := max(minArrivalWindowSeconds, s.Arrivals[n-1]-s.Arrivals[0])
	d := Derived{
		ArrivalRatePerMinute: max(float64(n)/window*60, minDerivedRatePerMinute),
		MeanServiceSeconds:   DefaultDerivedMeanSeconds,
		ServiceCV:            DefaultDerivedCV,
		ArrivalsSec:          s.Rebased(),
	}

	var samples []float64
	for _, v := range s.Services {
		if v > 0 && !math.IsInf(v, 0) {
			samples = append(samples, v)
		}
	}
	if len(samples) >= MinDeriveSamples {
		mean, std := stat.MeanStdDev(samples, nil)
		cv := 0.0
		if mean > 0 {
			cv = std / mean
		}
		d.MeanServiceSeconds = max(mean, sim.MinServiceSeconds)
		d.ServiceCV = clampCV(cv)
		d.ServiceFromData = true
	}
	if len(samples) > 0 {
		d.ServicesSec = append([]float64(nil), s.Services...)
	}
	return d, nil
}

// UniformQuickSetup derives parameters for service times uniform on
// [minSec, maxSec] and perHour arrivals per hour. Bounds are ordered and
// floored so the range is never empty.
func UniformQuickSetup(minSec, maxSec, perHour float64) Derived {
	a := max(0.01, min(minSec, maxSec))
	b := max(a+0.01, max(minSec, maxSec))
	mean := (a + b) / 2
	sd := (b - a) / math.Sqrt(12)
	return Derived{
		ArrivalRatePerMinute: max(minPerHour, perHour) / 60,
		MeanServiceSeconds:   max(mean, sim.MinServiceSeconds),
		ServiceCV:            clampCV(sd / mean),
	}
}

// Apply writes the derived parameters into cfg. A non-nil schedule switches
// cfg to exact-schedule mode.
func (d Derived) Apply(cfg *sim.SimulationConfig) {
	cfg.ArrivalRatePerMinute = d.ArrivalRatePerMinute
	cfg.MeanServiceSeconds = d.MeanServiceSeconds
	cfg.ServiceCV = d.ServiceCV
	if len(d.ArrivalsSec) > 0 {
		cfg.ArrivalTimestamps = append([]float64(nil), d.ArrivalsSec...)
		cfg.ServiceDurations = append([]float64(nil), d.ServicesSec...)
	}
}

func clampCV(cv float64) float64 {
	if math.IsNaN(cv) {
		return minDerivedCV
	}
	return min(max(cv, minDerivedCV), maxDerivedCV)
}

package workload

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/booth-sim/sim"
	"github.com/inference-sim/booth-sim/sim/trace"
)

// ScenarioSpec is a booth scenario loaded from YAML via LoadScenarioSpec.
// Every field is optional; unset fields keep the base configuration's value.
type ScenarioSpec struct {
	ArrivalRatePerMinute *float64 `yaml:"arrival_rate_per_minute,omitempty"`
	MeanServiceSeconds   *float64 `yaml:"mean_service_seconds,omitempty"`
	ServiceCV            *float64 `yaml:"service_cv,omitempty"`
	Servers              *int     `yaml:"servers,omitempty"`
	Speed                *float64 `yaml:"speed,omitempty"`
	SLATargetMinutes     *float64 `yaml:"sla_target_minutes,omitempty"`
	Seed                 *int64   `yaml:"seed,omitempty"`
	RollingWindow        *int     `yaml:"rolling_window,omitempty"`
	AutoConclusionAt     *int     `yaml:"auto_conclusion_at,omitempty"`
	FastForward          *bool    `yaml:"fast_forward,omitempty"`
	TraceLevel           string   `yaml:"trace_level,omitempty"`

	Schedule       *ScheduleSpec `yaml:"schedule,omitempty"`
	UniformService *UniformSpec  `yaml:"uniform_service,omitempty"`

	// baseDir resolves a relative Schedule.File; set by LoadScenarioSpec.
	baseDir string
}

// ScheduleSpec selects exact-schedule mode, either from inline arrays or a
// CSV file.
type ScheduleSpec struct {
	ArrivalsSec []float64 `yaml:"arrivals_sec,omitempty"`
	ServiceSec  []float64 `yaml:"service_sec,omitempty"`

	File          string `yaml:"file,omitempty"`
	ColumnMapping `yaml:",inline"`

	// Derive replaces λ, E[S] and CV with values estimated from the schedule.
	Derive bool `yaml:"derive,omitempty"`
}

// UniformSpec is the quick setup: uniform service range plus hourly arrivals.
type UniformSpec struct {
	MinSec          float64 `yaml:"min_sec"`
	MaxSec          float64 `yaml:"max_sec"`
	ArrivalsPerHour float64 `yaml:"arrivals_per_hour"`
}

// LoadScenarioSpec reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadScenarioSpec(path string) (*ScenarioSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var spec ScenarioSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	spec.baseDir = filepath.Dir(path)
	return &spec, nil
}

// Validate checks the fields that cannot be checked after conversion.
// Numeric ranges are enforced by sim.SimulationConfig.Validate.
func (s *ScenarioSpec) Validate() error {
	if !trace.IsValidTraceLevel(s.TraceLevel) {
		return fmt.Errorf("unknown trace_level %q; valid: none, events", s.TraceLevel)
	}
	if s.Servers != nil && *s.Servers < 0 {
		return fmt.Errorf("servers must be >= 0, got %d", *s.Servers)
	}
	if u := s.UniformService; u != nil {
		if err := validateFinite("uniform_service.min_sec", u.MinSec); err != nil {
			return err
		}
		if err := validateFinite("uniform_service.max_sec", u.MaxSec); err != nil {
			return err
		}
		if err := validateFinite("uniform_service.arrivals_per_hour", u.ArrivalsPerHour); err != nil {
			return err
		}
		if s.Schedule != nil && s.Schedule.Derive {
			return fmt.Errorf("uniform_service and schedule.derive both set the service parameters; choose one")
		}
	}
	if sc := s.Schedule; sc != nil {
		if sc.File != "" && len(sc.ArrivalsSec) > 0 {
			return fmt.Errorf("schedule.file and schedule.arrivals_sec are mutually exclusive")
		}
		if sc.File == "" && len(sc.ArrivalsSec) == 0 {
			return fmt.Errorf("schedule requires file or arrivals_sec")
		}
		if len(sc.ServiceSec) > 0 && sc.File != "" {
			return fmt.Errorf("schedule.service_sec is only valid with arrivals_sec")
		}
		if len(sc.ServiceSec) > len(sc.ArrivalsSec) {
			return fmt.Errorf("schedule.service_sec has %d entries for %d arrivals", len(sc.ServiceSec), len(sc.ArrivalsSec))
		}
		for i := 1; i < len(sc.ArrivalsSec); i++ {
			if sc.ArrivalsSec[i] < sc.ArrivalsSec[i-1] {
				return fmt.Errorf("schedule.arrivals_sec must be non-decreasing: index %d (%g) < index %d (%g)",
					i, sc.ArrivalsSec[i], i-1, sc.ArrivalsSec[i-1])
			}
		}
		if err := sc.ColumnMapping.Validate(); err != nil {
			return fmt.Errorf("schedule: %w", err)
		}
	}
	return nil
}

func validateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, v)
	}
	return nil
}

// ToConfig overlays the scenario onto base. Scalars are applied first, then
// the uniform quick setup, then the schedule (which may derive parameters).
func (s *ScenarioSpec) ToConfig(base sim.SimulationConfig) (sim.SimulationConfig, error) {
	if err := s.Validate(); err != nil {
		return base, err
	}
	cfg := base
	setFloat(&cfg.ArrivalRatePerMinute, s.ArrivalRatePerMinute)
	setFloat(&cfg.MeanServiceSeconds, s.MeanServiceSeconds)
	setFloat(&cfg.ServiceCV, s.ServiceCV)
	setFloat(&cfg.SpeedMultiplier, s.Speed)
	setFloat(&cfg.SLATargetMinutes, s.SLATargetMinutes)
	setInt(&cfg.ServerCount, s.Servers)
	setInt(&cfg.RollingWindow, s.RollingWindow)
	setInt(&cfg.AutoConclusionAt, s.AutoConclusionAt)
	if s.Seed != nil {
		cfg.Seed = *s.Seed
	}
	if s.FastForward != nil {
		cfg.DisableFastForward = !*s.FastForward
	}
	if s.TraceLevel != "" {
		cfg.TraceLevel = trace.TraceLevel(s.TraceLevel)
	}

	if u := s.UniformService; u != nil {
		UniformQuickSetup(u.MinSec, u.MaxSec, u.ArrivalsPerHour).Apply(&cfg)
	}

	if sc := s.Schedule; sc != nil {
		sched, err := s.loadSchedule()
		if err != nil {
			return base, err
		}
		if sc.Derive {
			d, err := DeriveFromSchedule(sched)
			if err != nil {
				return base, err
			}
			logrus.Infof("[scenario] derived λ=%.3f/min E[S]=%.2fs CV=%.2f from %d arrivals",
				d.ArrivalRatePerMinute, d.MeanServiceSeconds, d.ServiceCV, sched.Len())
			d.Apply(&cfg)
		} else {
			cfg.ArrivalTimestamps = sched.Rebased()
			cfg.ServiceDurations = nil
			if sched.HasServices() {
				cfg.ServiceDurations = append([]float64(nil), sched.Services...)
			}
		}
	}
	return cfg, nil
}

func (s *ScenarioSpec) loadSchedule() (*Schedule, error) {
	sc := s.Schedule
	if sc.File == "" {
		services := make([]float64, len(sc.ArrivalsSec))
		copy(services, sc.ServiceSec)
		return &Schedule{
			Arrivals: append([]float64(nil), sc.ArrivalsSec...),
			Services: services,
		}, nil
	}
	path := sc.File
	if !filepath.IsAbs(path) && s.baseDir != "" {
		path = filepath.Join(s.baseDir, path)
	}
	return LoadScheduleCSV(path, sc.ColumnMapping)
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

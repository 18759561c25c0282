package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/inference-sim/booth-sim/sim"
	"github.com/inference-sim/booth-sim/sim/trace"
	"github.com/inference-sim/booth-sim/sim/workload"
)

// buildConfig assembles a SimulationConfig in precedence order: defaults,
// then the --scenario file, then the --schedule CSV, then the uniform quick
// setup, then every model flag the user set explicitly.
func buildConfig(flags *pflag.FlagSet) (sim.SimulationConfig, error) {
	cfg := sim.DefaultSimulationConfig()

	if scenarioPath != "" {
		spec, err := workload.LoadScenarioSpec(scenarioPath)
		if err != nil {
			return cfg, err
		}
		if cfg, err = spec.ToConfig(cfg); err != nil {
			return cfg, fmt.Errorf("scenario %s: %w", scenarioPath, err)
		}
		logrus.Infof("Loaded scenario %s (%s mode)", scenarioPath, cfg.Mode())
	}

	if schedulePath != "" {
		sched, err := workload.LoadScheduleCSV(schedulePath, columnMapping())
		if err != nil {
			return cfg, err
		}
		if deriveParams {
			d, err := workload.DeriveFromSchedule(sched)
			if err != nil {
				return cfg, err
			}
			d.Apply(&cfg)
		} else {
			cfg.ArrivalTimestamps = sched.Rebased()
			cfg.ServiceDurations = nil
			if sched.HasServices() {
				cfg.ServiceDurations = sched.Services
			}
		}
		logrus.Infof("Loaded %d arrivals from %s (%d rows skipped)", sched.Len(), schedulePath, sched.Skipped)
	} else if deriveParams {
		return cfg, fmt.Errorf("--derive requires --schedule")
	}

	if flags.Changed("uniform-min") || flags.Changed("uniform-max") || flags.Changed("arrivals-per-hour") {
		workload.UniformQuickSetup(uniformMin, uniformMax, uniformPerHour).Apply(&cfg)
	}

	applyChangedFlags(flags, &cfg)

	if !trace.IsValidTraceLevel(string(cfg.TraceLevel)) {
		return cfg, fmt.Errorf("unknown trace level %q; valid: none, events", cfg.TraceLevel)
	}
	return cfg, nil
}

// applyChangedFlags copies only the flags the user set, so a scenario file's
// values survive flag defaults.
func applyChangedFlags(flags *pflag.FlagSet, cfg *sim.SimulationConfig) {
	if flags.Changed("rate") {
		cfg.ArrivalRatePerMinute = arrivalRate
	}
	if flags.Changed("mean-service") {
		cfg.MeanServiceSeconds = meanService
	}
	if flags.Changed("cv") {
		cfg.ServiceCV = serviceCV
	}
	if flags.Changed("servers") {
		cfg.ServerCount = servers
	}
	if flags.Changed("speed") {
		cfg.SpeedMultiplier = speed
	}
	if flags.Changed("sla") {
		cfg.SLATargetMinutes = slaTarget
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("window") {
		cfg.RollingWindow = rollingWindow
	}
	if flags.Changed("conclude-at") {
		cfg.AutoConclusionAt = concludeAt
	}
	if flags.Changed("no-fast-forward") {
		cfg.DisableFastForward = noFastForward
	}
	if flags.Changed("trace") {
		cfg.TraceLevel = trace.TraceLevel(traceLevel)
	}
}

func columnMapping() workload.ColumnMapping {
	return workload.ColumnMapping{
		Arrival:      arrivalColumn,
		Duration:     durationColumn,
		DurationUnit: workload.DurationUnit(durationUnit),
		Start:        startColumn,
		End:          endColumn,
	}
}

package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inference-sim/booth-sim/sim/trace"
)

// Half-second steps: 0.03125 × 16 is exact in binary floating point, so the
// clock lands on every multiple of 0.5 without drift.
const (
	halfStepRealDelta = 0.03125
	halfStepSpeed     = 16
)

// exactConfig returns a traced exact-schedule config stepping in 0.5s ticks.
func exactConfig(servers int, arrivals, services []float64) SimulationConfig {
	cfg := DefaultSimulationConfig()
	cfg.ServerCount = servers
	cfg.SpeedMultiplier = halfStepSpeed
	cfg.ArrivalTimestamps = arrivals
	cfg.ServiceDurations = services
	cfg.AutoConclusionAt = 0
	cfg.TraceLevel = trace.TraceLevelEvents
	return cfg
}

func mustEngine(t *testing.T, cfg SimulationConfig) *Engine {
	t.Helper()
	e, err := NewEngine(cfg)
	require.NoError(t, err)
	return e
}

// tickUntil ticks e with realDelta until clock >= until.
func tickUntil(e *Engine, realDelta, until float64) {
	for e.Clock() < until {
		if !e.Tick(realDelta) {
			return
		}
	}
}

func assignmentStarts(st *trace.SimulationTrace) map[string]float64 {
	out := make(map[string]float64, len(st.Assignments))
	for _, a := range st.Assignments {
		out[a.JobID] = a.StartAt
	}
	return out
}

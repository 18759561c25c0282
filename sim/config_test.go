package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSimulationConfig_IsValid(t *testing.T) {
	cfg := DefaultSimulationConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ModeStochastic, cfg.Mode())
	assert.Equal(t, 15.0, cfg.SLATargetMinutes)
	assert.Equal(t, 200, cfg.AutoConclusionAt)
}

func TestSimulationConfig_Validate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SimulationConfig)
	}{
		{"zero arrival rate in stochastic mode", func(c *SimulationConfig) { c.ArrivalRatePerMinute = 0 }},
		{"negative arrival rate", func(c *SimulationConfig) { c.ArrivalRatePerMinute = -1 }},
		{"NaN arrival rate", func(c *SimulationConfig) { c.ArrivalRatePerMinute = math.NaN() }},
		{"zero mean service", func(c *SimulationConfig) { c.MeanServiceSeconds = 0 }},
		{"infinite mean service", func(c *SimulationConfig) { c.MeanServiceSeconds = math.Inf(1) }},
		{"negative CV", func(c *SimulationConfig) { c.ServiceCV = -0.1 }},
		{"negative servers", func(c *SimulationConfig) { c.ServerCount = -2 }},
		{"zero speed", func(c *SimulationConfig) { c.SpeedMultiplier = 0 }},
		{"negative SLA", func(c *SimulationConfig) { c.SLATargetMinutes = -1 }},
		{"negative window", func(c *SimulationConfig) { c.RollingWindow = -1 }},
		{"unknown trace level", func(c *SimulationConfig) { c.TraceLevel = "verbose" }},
		{"decreasing schedule", func(c *SimulationConfig) { c.ArrivalTimestamps = []float64{0, 5, 4} }},
		{"negative timestamp", func(c *SimulationConfig) { c.ArrivalTimestamps = []float64{-1, 2} }},
		{"more services than arrivals", func(c *SimulationConfig) {
			c.ArrivalTimestamps = []float64{0}
			c.ServiceDurations = []float64{1, 2}
		}},
		{"services without arrivals", func(c *SimulationConfig) { c.ServiceDurations = []float64{3} }},
		{"NaN service duration", func(c *SimulationConfig) {
			c.ArrivalTimestamps = []float64{0, 1}
			c.ServiceDurations = []float64{3, math.NaN()}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSimulationConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "error %v must wrap ErrInvalidConfig", err)
		})
	}
}

func TestSimulationConfig_ExactMode_IgnoresArrivalRate(t *testing.T) {
	// GIVEN an exact schedule and no stochastic arrival rate
	cfg := DefaultSimulationConfig()
	cfg.ArrivalRatePerMinute = 0
	cfg.ArrivalTimestamps = []float64{0, 5, 5, 12}
	cfg.ServiceDurations = []float64{3, 0, -1}

	// THEN the config is valid and in exact mode (short and non-positive services allowed)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ModeExact, cfg.Mode())
}

func TestSimulationConfig_Normalized_DefaultsServerCount(t *testing.T) {
	cfg := DefaultSimulationConfig()
	cfg.ServerCount = 0
	cfg.RollingWindow = 0
	n := cfg.normalized()
	assert.Equal(t, 1, n.ServerCount)
	assert.Equal(t, DefaultWindowCapacity, n.RollingWindow)
	assert.Equal(t, 0, cfg.ServerCount, "normalized must not mutate the receiver")
}

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/booth-sim/sim"
	"github.com/inference-sim/booth-sim/sim/trace"
)

// newTestCommand registers the model flags on a fresh command, which also
// resets the package-level flag variables to their defaults.
func newTestCommand(t *testing.T, set map[string]string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	registerModelFlags(cmd)
	for name, value := range set {
		require.NoError(t, cmd.Flags().Set(name, value), "flag %s", name)
	}
	return cmd
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestBuildConfig_DefaultsWithoutFlags(t *testing.T) {
	cmd := newTestCommand(t, nil)
	cfg, err := buildConfig(cmd.Flags())
	require.NoError(t, err)
	assert.Equal(t, sim.DefaultSimulationConfig(), cfg)
}

func TestBuildConfig_ChangedFlagsOverrideScenario(t *testing.T) {
	// GIVEN a scenario with λ=3 and two booths
	path := writeTemp(t, "scenario.yaml", "arrival_rate_per_minute: 3\nservers: 2\n")

	// WHEN only --servers is set explicitly
	cmd := newTestCommand(t, map[string]string{"scenario": path, "servers": "4", "trace": "events"})
	cfg, err := buildConfig(cmd.Flags())
	require.NoError(t, err)

	// THEN the file's λ survives the flag default and the explicit flag wins
	assert.Equal(t, 3.0, cfg.ArrivalRatePerMinute)
	assert.Equal(t, 4, cfg.ServerCount)
	assert.Equal(t, trace.TraceLevelEvents, cfg.TraceLevel)
}

func TestBuildConfig_ScheduleCSV(t *testing.T) {
	path := writeTemp(t, "arrivals.csv", "arrival,service\n100,30\n130,40\n160,50\n")

	cmd := newTestCommand(t, map[string]string{"schedule": path})
	cfg, err := buildConfig(cmd.Flags())
	require.NoError(t, err)
	assert.Equal(t, sim.ModeExact, cfg.Mode())
	assert.Equal(t, []float64{0, 30, 60}, cfg.ArrivalTimestamps)
	assert.Equal(t, []float64{30, 40, 50}, cfg.ServiceDurations)
	assert.Equal(t, 2.0, cfg.ArrivalRatePerMinute, "λ untouched without --derive")

	cmd = newTestCommand(t, map[string]string{"schedule": path, "derive": "true"})
	cfg, err = buildConfig(cmd.Flags())
	require.NoError(t, err)
	assert.InDelta(t, 3.0, cfg.ArrivalRatePerMinute, 1e-9)
	assert.InDelta(t, 40.0, cfg.MeanServiceSeconds, 1e-9)
}

func TestBuildConfig_UniformQuickSetup(t *testing.T) {
	cmd := newTestCommand(t, map[string]string{"uniform-min": "30", "uniform-max": "70", "arrivals-per-hour": "120"})
	cfg, err := buildConfig(cmd.Flags())
	require.NoError(t, err)
	assert.InDelta(t, 2.0, cfg.ArrivalRatePerMinute, 1e-12)
	assert.InDelta(t, 50.0, cfg.MeanServiceSeconds, 1e-12)
}

func TestBuildConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]string
	}{
		{"derive without schedule", map[string]string{"derive": "true"}},
		{"missing scenario", map[string]string{"scenario": filepath.Join(t.TempDir(), "missing.yaml")}},
		{"bad trace level", map[string]string{"trace": "verbose"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newTestCommand(t, tt.set)
			_, err := buildConfig(cmd.Flags())
			assert.Error(t, err)
		})
	}
}

package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/booth-sim/sim"
	"github.com/inference-sim/booth-sim/sim/workload"
)

var (
	// Logging
	logLevel string // Log verbosity level

	// Scenario sources
	scenarioPath   string // YAML scenario file
	schedulePath   string // CSV arrival schedule
	arrivalColumn  string // CSV column holding arrival times
	durationColumn string // CSV column holding service durations
	durationUnit   string // sec or min
	startColumn    string // CSV column holding service start times
	endColumn      string // CSV column holding service end times
	deriveParams   bool   // Replace λ, E[S], CV with values derived from the schedule

	// Model parameters
	arrivalRate    float64 // λ, passengers per minute
	meanService    float64 // E[S], seconds
	serviceCV      float64 // CV of service time
	servers        int     // Number of booths
	speed          float64 // Simulated seconds per real second
	slaTarget      float64 // SLA target, minutes
	seed           int64   // Seed for the arrival and service streams
	rollingWindow  int     // Wait samples kept for P95/SLA
	concludeAt     int     // Completions before the run pauses for its conclusion
	noFastForward  bool    // Disable the idle-start skip
	traceLevel     string  // none or events
	uniformMin     float64 // Quick setup: min service seconds
	uniformMax     float64 // Quick setup: max service seconds
	uniformPerHour float64 // Quick setup: arrivals per hour
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "booth-sim",
	Short: "Tick-driven M/G/1(c) queueing simulator for migration booths",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerModelFlags adds the parameters shared by every command that builds
// a SimulationConfig.
func registerModelFlags(cmd *cobra.Command) {
	d := sim.DefaultSimulationConfig()

	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "YAML scenario file; explicitly set flags override its values")
	cmd.Flags().StringVar(&schedulePath, "schedule", "", "CSV arrival schedule (enables exact-schedule mode)")
	registerColumnFlags(cmd)
	cmd.Flags().BoolVar(&deriveParams, "derive", false, "Derive λ, E[S] and CV from --schedule")

	cmd.Flags().Float64Var(&arrivalRate, "rate", d.ArrivalRatePerMinute, "Arrival rate λ (passengers per minute)")
	cmd.Flags().Float64Var(&meanService, "mean-service", d.MeanServiceSeconds, "Mean service time E[S] (seconds)")
	cmd.Flags().Float64Var(&serviceCV, "cv", d.ServiceCV, "Coefficient of variation of service time")
	cmd.Flags().IntVar(&servers, "servers", d.ServerCount, "Number of booths")
	cmd.Flags().Float64Var(&speed, "speed", d.SpeedMultiplier, "Simulated seconds per real second")
	cmd.Flags().Float64Var(&slaTarget, "sla", d.SLATargetMinutes, "SLA waiting-time target (minutes)")
	cmd.Flags().Int64Var(&seed, "seed", d.Seed, "Seed for arrival and service sampling")
	cmd.Flags().IntVar(&rollingWindow, "window", d.RollingWindow, "Recent waits kept for P95 and SLA compliance")
	cmd.Flags().IntVar(&concludeAt, "conclude-at", d.AutoConclusionAt, "Pause for a conclusion after this many passengers (0 disables)")
	cmd.Flags().BoolVar(&noFastForward, "no-fast-forward", false, "Do not skip an idle start before the first arrival")
	cmd.Flags().StringVar(&traceLevel, "trace", "none", "Event trace level (none, events)")

	cmd.Flags().Float64Var(&uniformMin, "uniform-min", 0, "Quick setup: minimum service time (seconds)")
	cmd.Flags().Float64Var(&uniformMax, "uniform-max", 0, "Quick setup: maximum service time (seconds)")
	cmd.Flags().Float64Var(&uniformPerHour, "arrivals-per-hour", 0, "Quick setup: arrivals per hour")
}

func registerColumnFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&arrivalColumn, "arrival-column", workload.DefaultArrivalColumn, "CSV column with arrival times")
	cmd.Flags().StringVar(&durationColumn, "duration-column", "", "CSV column with service durations (default \"service\")")
	cmd.Flags().StringVar(&durationUnit, "duration-unit", string(workload.UnitSeconds), "Unit of --duration-column (sec, min)")
	cmd.Flags().StringVar(&startColumn, "start-column", "", "CSV column with service start times")
	cmd.Flags().StringVar(&endColumn, "end-column", "", "CSV column with service end times")
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	registerModelFlags(runCmd)
	registerRunFlags(runCmd)
	registerModelFlags(watchCmd)
	registerWatchFlags(watchCmd)
	registerModelFlags(analyzeCmd)
	registerColumnFlags(deriveCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(deriveCmd)
}

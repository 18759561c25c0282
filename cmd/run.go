package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/booth-sim/sim"
	"github.com/inference-sim/booth-sim/sim/host"
	"github.com/inference-sim/booth-sim/sim/trace"
)

var (
	frameSeconds    float64 // Real seconds per headless frame
	stopCompletions int     // Stop after this many passengers
	stopHorizon     float64 // Stop at this simulated time (seconds)
	maxFrames       int     // Safety cap on headless frames
	jsonOutput      bool    // Print the final report as JSON
	traceOut        string  // Path prefix for the per-passenger trace export
)

func registerRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&frameSeconds, "frame", sim.MaxRealDeltaSeconds, "Real seconds per frame of the headless driver")
	cmd.Flags().IntVar(&stopCompletions, "completions", 0, "Stop after this many passengers are served (0 = no limit)")
	cmd.Flags().Float64Var(&stopHorizon, "horizon", 0, "Stop at this simulated time in seconds (0 = no limit)")
	cmd.Flags().IntVar(&maxFrames, "max-frames", 50_000_000, "Maximum frames before giving up")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the final report as JSON")
	cmd.Flags().StringVar(&traceOut, "trace-out", "", "Export the event trace to <prefix>.yaml and <prefix>.csv (implies --trace events)")
}

// runCmd drives the engine headless with a fixed frame delta
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the booth simulation headless and report the results",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := buildConfig(cmd.Flags())
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if traceOut != "" {
			cfg.TraceLevel = trace.TraceLevelEvents
		}

		var stops []host.StopCondition
		if stopCompletions > 0 {
			stops = append(stops, host.UntilCompleted(stopCompletions))
		}
		if stopHorizon > 0 {
			stops = append(stops, host.UntilClock(stopHorizon))
		}
		if cfg.HasSchedule() {
			stops = append(stops, host.UntilDrained())
		}
		if len(stops) == 0 && cfg.AutoConclusionAt <= 0 {
			logrus.Fatalf("No stop condition: set --completions, --horizon, --conclude-at or --schedule")
		}

		e, err := sim.NewEngine(cfg)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		logrus.Infof("Starting %s run %s with %d booths", cfg.Mode(), e.RunID(), cfg.ServerCount)

		startTime := time.Now()
		frames, reason := host.Drive(e, frameSeconds, host.Any(stops...), maxFrames)
		logrus.Infof("Run stopped (%s) after %d frames, %.1fs simulated, %s wall time",
			reason, frames, e.Clock(), time.Since(startTime).Round(time.Millisecond))

		report := buildReport(e, frames, reason)
		if traceOut != "" {
			if err := exportTrace(e, traceOut); err != nil {
				logrus.Fatalf("Exporting trace: %v", err)
			}
			logrus.Infof("Trace written to %s.yaml and %s.csv", traceOut, traceOut)
		}
		if jsonOutput {
			if err := writeJSONReport(os.Stdout, report); err != nil {
				logrus.Fatalf("Writing report: %v", err)
			}
			return
		}
		printReport(os.Stdout, report)
		logrus.Info("Simulation complete.")
	},
}

// exportTrace writes the engine's event trace as <prefix>.yaml (run header)
// and <prefix>.csv (one row per passenger).
func exportTrace(e *sim.Engine, prefix string) error {
	cfg := e.Config()
	header := trace.ExportHeader{
		RunID:                e.RunID(),
		Mode:                 string(cfg.Mode()),
		Seed:                 cfg.Seed,
		Servers:              cfg.ServerCount,
		ArrivalRatePerMinute: cfg.ArrivalRatePerMinute,
		MeanServiceSeconds:   cfg.MeanServiceSeconds,
		ServiceCV:            cfg.ServiceCV,
		SpeedMultiplier:      cfg.SpeedMultiplier,
	}
	return trace.Export(header, e.Trace(), prefix+".yaml", prefix+".csv")
}

package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/booth-sim/sim"
	"github.com/inference-sim/booth-sim/sim/workload"
)

// analyzeCmd prints the analytical reference model without simulating
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Print the Pollaczek-Khinchine reference model for the given parameters",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := buildConfig(cmd.Flags())
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		ref := sim.ComputeReference(cfg.ArrivalRatePerMinute, cfg.MeanServiceSeconds, cfg.ServiceCV, cfg.ServerCount)
		printReference(os.Stdout, cfg, ref)
	},
}

// deriveCmd estimates model parameters from a CSV schedule
var deriveCmd = &cobra.Command{
	Use:   "derive <schedule.csv>",
	Short: "Derive λ, E[S] and CV from a CSV arrival schedule",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sched, err := workload.LoadScheduleCSV(args[0], columnMapping())
		if err != nil {
			logrus.Fatalf("Reading schedule: %v", err)
		}
		d, err := workload.DeriveFromSchedule(sched)
		if err != nil {
			logrus.Fatalf("Deriving parameters: %v", err)
		}
		printDerived(os.Stdout, sched, d)
	},
}

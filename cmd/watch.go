package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"k8s.io/utils/clock"

	"github.com/inference-sim/booth-sim/sim"
	"github.com/inference-sim/booth-sim/sim/host"
)

var (
	frameInterval time.Duration // Wall-clock frame period
	hudEvery      int           // Print a HUD line every N frames
	watchFor      time.Duration // Stop after this much wall time (0 = until interrupted)
)

func registerWatchFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&frameInterval, "frame-interval", host.DefaultFrame, "Wall-clock frame period")
	cmd.Flags().IntVar(&hudEvery, "hud-every", 30, "Print a status line every N frames")
	cmd.Flags().DurationVar(&watchFor, "for", 0, "Stop after this much wall time (0 = until interrupted)")
}

// watchCmd drives the engine in real time and prints a status line
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the booth simulation in real time with a live status line",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := buildConfig(cmd.Flags())
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		e, err := sim.NewEngine(cfg)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if watchFor > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, watchFor)
			defer cancel()
		}

		loop := host.NewLoop(e, clock.RealClock{}, frameInterval)
		frame := 0
		concluded := false
		loop.OnFrame(func(s sim.Snapshot) {
			frame++
			if hudEvery > 0 && frame%hudEvery == 0 {
				fmt.Fprintln(os.Stdout, hudLine(s))
			}
			if s.ConclusionReady && !concluded {
				concluded = true
				fmt.Fprintf(os.Stdout, "\n%s\n\n", sim.Conclude(s, cfg).Text)
			}
		})

		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			logrus.Fatalf("Frame loop failed: %v", err)
		}
		printReport(os.Stdout, buildReport(e, frame, host.StoppedByCondition))
	},
}

// hudLine renders the one-line status shown while watching.
func hudLine(s sim.Snapshot) string {
	next := "-"
	if s.TimeToNextArrival != nil {
		next = sim.FormatSeconds(*s.TimeToNextArrival)
	}
	state := "running"
	if s.Paused {
		state = "paused"
	}
	return fmt.Sprintf("[%8s] %-7s queue=%-3d busy=%d/%d served=%-5d avg=%-8s p95=%-8s SLA=%5.1f%% next=%s",
		sim.FormatSeconds(s.Clock), state, s.QueueLength, s.BusyServers, s.ServerCount, s.Completed,
		sim.FormatSeconds(s.AverageWait), sim.FormatSeconds(s.P95Wait), s.SLACompliance, next)
}

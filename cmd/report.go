package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/inference-sim/booth-sim/sim"
	"github.com/inference-sim/booth-sim/sim/host"
	"github.com/inference-sim/booth-sim/sim/trace"
	"github.com/inference-sim/booth-sim/sim/workload"
)

// Report is the end-of-run output of the run and watch commands.
type Report struct {
	RunID       string              `json:"run_id"`
	Config      reportConfig        `json:"config"`
	Frames      int                 `json:"frames"`
	StopReason  host.StopReason     `json:"stop_reason"`
	Snapshot    sim.Snapshot        `json:"snapshot"`
	WaitSummary sim.RunSummary      `json:"wait_summary"`
	Conclusion  sim.Conclusion      `json:"conclusion"`
	Trace       *trace.TraceSummary `json:"trace,omitempty"`
}

type reportConfig struct {
	Mode                 sim.ScheduleMode `json:"mode"`
	ArrivalRatePerMinute float64          `json:"arrival_rate_per_minute"`
	MeanServiceSeconds   float64          `json:"mean_service_seconds"`
	ServiceCV            float64          `json:"service_cv"`
	Servers              int              `json:"servers"`
	SpeedMultiplier      float64          `json:"speed_multiplier"`
	SLATargetMinutes     float64          `json:"sla_target_minutes"`
	Seed                 int64            `json:"seed"`
	ScheduledArrivals    int              `json:"scheduled_arrivals,omitempty"`
}

func buildReport(e *sim.Engine, frames int, reason host.StopReason) Report {
	cfg := e.Config()
	snap := e.Snapshot()
	r := Report{
		RunID: e.RunID(),
		Config: reportConfig{
			Mode:                 cfg.Mode(),
			ArrivalRatePerMinute: cfg.ArrivalRatePerMinute,
			MeanServiceSeconds:   cfg.MeanServiceSeconds,
			ServiceCV:            cfg.ServiceCV,
			Servers:              cfg.ServerCount,
			SpeedMultiplier:      cfg.SpeedMultiplier,
			SLATargetMinutes:     cfg.SLATargetMinutes,
			Seed:                 cfg.Seed,
			ScheduledArrivals:    len(cfg.ArrivalTimestamps),
		},
		Frames:      frames,
		StopReason:  reason,
		Snapshot:    snap,
		WaitSummary: e.Metrics().RunSummary(),
		Conclusion:  sim.Conclude(snap, cfg),
	}
	if st := e.Trace(); st != nil {
		r.Trace = trace.Summarize(st)
	}
	return r
}

func writeJSONReport(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// printReport writes the human-readable summary, reference table and conclusion.
func printReport(w io.Writer, r Report) {
	s := r.Snapshot
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Mode                 : %s\n", r.Config.Mode)
	fmt.Fprintf(w, "Simulated Time       : %s\n", sim.FormatSeconds(s.Clock))
	fmt.Fprintf(w, "Passengers Served    : %d\n", s.Completed)
	fmt.Fprintf(w, "In Queue / In Service: %d / %d\n", s.QueueLength, s.BusyServers)
	fmt.Fprintf(w, "Average Wait         : %s\n", sim.FormatSeconds(s.AverageWait))
	fmt.Fprintf(w, "P95 Wait (window)    : %s\n", sim.FormatSeconds(s.P95Wait))
	fmt.Fprintf(w, "SLA <= %g min        : %.1f%%\n", s.SLATargetMinutes, s.SLACompliance)
	if ws := r.WaitSummary; ws.Count > 0 {
		fmt.Fprintf(w, "Wait (full run)      : mean %s, p50 %s, p95 %s, max %s\n",
			sim.FormatSeconds(ws.Mean), sim.FormatSeconds(ws.P50), sim.FormatSeconds(ws.P95), sim.FormatSeconds(ws.Max))
	}
	if r.Trace != nil {
		fmt.Fprintf(w, "Trace                : %d admitted, %d assigned, %d completed, largest burst %d\n",
			r.Trace.Admitted, r.Trace.Assigned, r.Trace.Completed, r.Trace.LargestBurst)
	}
	fmt.Fprintln(w)
	printReferenceTable(w, s.Reference)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Conclusion ===")
	fmt.Fprintln(w, r.Conclusion.Text)
}

func printReference(w io.Writer, cfg sim.SimulationConfig, ref sim.ReferenceModel) {
	fmt.Fprintf(w, "λ = %.3f /min, E[S] = %.2f s, CV = %.2f, c = %d\n",
		cfg.ArrivalRatePerMinute, cfg.MeanServiceSeconds, cfg.ServiceCV, ref.Servers)
	printReferenceTable(w, ref)
}

func printReferenceTable(w io.Writer, ref sim.ReferenceModel) {
	fmt.Fprintf(w, "=== Reference Model (%s, Pollaczek-Khinchine) ===\n", ref.ModelLabel())
	fmt.Fprintf(w, "μ                    : %.3f /min\n", ref.ServiceRatePerMinute)
	fmt.Fprintf(w, "ρ                    : %.3f\n", ref.Rho)
	if !ref.Stable {
		fmt.Fprintln(w, "Status               : unstable or inactive (ρ >= 1 or λ <= 0); queue metrics undefined")
		return
	}
	fmt.Fprintf(w, "Lq                   : %.3f\n", ref.Lq)
	fmt.Fprintf(w, "Wq                   : %s (%.3f min)\n", sim.FormatSeconds(ref.WqSeconds), ref.WqMinutes())
	fmt.Fprintf(w, "L                    : %.3f\n", ref.L)
	fmt.Fprintf(w, "W                    : %s (%.3f min)\n", sim.FormatSeconds(ref.WSeconds), ref.WMinutes())
	fmt.Fprintf(w, "P0                   : %.3f\n", ref.P0)
}

func printDerived(w io.Writer, sched *workload.Schedule, d workload.Derived) {
	fmt.Fprintln(w, "=== Derived Parameters ===")
	fmt.Fprintf(w, "Arrivals             : %d (%d rows skipped)\n", sched.Len(), sched.Skipped)
	fmt.Fprintf(w, "λ                    : %.3f /min\n", d.ArrivalRatePerMinute)
	source := "from data"
	if !d.ServiceFromData {
		source = "default, fewer than 3 durations"
	}
	fmt.Fprintf(w, "E[S]                 : %.2f s (%s)\n", d.MeanServiceSeconds, source)
	fmt.Fprintf(w, "CV                   : %.3f\n", d.ServiceCV)
	printReferenceTable(w, sim.ComputeReference(d.ArrivalRatePerMinute, d.MeanServiceSeconds, d.ServiceCV, 1))
}

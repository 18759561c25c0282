package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	Admitted         int         `json:"admitted"`
	Assigned         int         `json:"assigned"`
	Completed        int         `json:"completed"`
	MeanWait         float64     `json:"mean_wait"`
	MaxWait          float64     `json:"max_wait"`
	LargestBurst     int         `json:"largest_burst"`     // most admissions in a single tick
	ServerAssignment map[int]int `json:"server_assignment"` // booth index → passengers served
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ServerAssignment: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.Admitted = len(st.Admissions)
	burst := 0
	for i, a := range st.Admissions {
		if i > 0 && a.Tick == st.Admissions[i-1].Tick {
			burst++
		} else {
			burst = 1
		}
		if burst > summary.LargestBurst {
			summary.LargestBurst = burst
		}
	}

	summary.Assigned = len(st.Assignments)
	for _, a := range st.Assignments {
		summary.ServerAssignment[a.Server]++
	}

	if len(st.Completions) > 0 {
		total := 0.0
		for _, c := range st.Completions {
			total += c.Wait
			if c.Wait > summary.MaxWait {
				summary.MaxWait = c.Wait
			}
		}
		summary.Completed = len(st.Completions)
		summary.MeanWait = total / float64(len(st.Completions))
	}

	return summary
}

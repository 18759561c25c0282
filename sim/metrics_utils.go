// sim/metrics_utils.go
package sim

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// RunSummary holds exact full-run wait statistics, in seconds.
type RunSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	P50    float64 `json:"p50"`
	P95    float64 `json:"p95"`
	Max    float64 `json:"max"`
}

// RunSummary computes statistics over every completion of the run, unlike
// the windowed Percentile95/SLACompliance.
func (m *Metrics) RunSummary() RunSummary {
	return SummarizeWaits(m.allWaits)
}

// SummarizeWaits computes count, mean, sample std-dev, empirical p50/p95 and
// max of waits. The input is not modified. Returns the zero value for no data.
func SummarizeWaits(waits []float64) RunSummary {
	n := len(waits)
	if n == 0 {
		return RunSummary{}
	}
	sorted := append([]float64(nil), waits...)
	sort.Float64s(sorted)

	s := RunSummary{
		Count: n,
		P50:   stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, sorted, nil),
		Max:   sorted[n-1],
	}
	if n == 1 {
		s.Mean = sorted[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(sorted, nil)
	return s
}

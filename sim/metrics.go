// Tracks waiting-time statistics derived from engine completion events.

package sim

import (
	"math"
	"sort"
)

const (
	// DefaultWindowCapacity is the number of recent wait samples kept for
	// percentile and SLA estimates.
	DefaultWindowCapacity = 300
	// MinWindowSamples is the sample count below which windowed metrics
	// report their "not yet meaningful" defaults.
	MinWindowSamples = 20
)

// Metrics aggregates wait statistics.
//
// Completed, TotalWait and AverageWait cover the whole run. Percentile95 and
// SLACompliance are computed over a rolling window of the most recent waits
// only; they describe recent behaviour, not the full run. RunSummary gives
// exact full-run quantiles.
type Metrics struct {
	Completed int     // passengers served
	TotalWait float64 // sum of waits, seconds

	window   []float64 // ring buffer of recent waits
	head     int       // index of the oldest sample once full
	capacity int

	allWaits []float64 // every wait in completion order, for RunSummary
}

// NewMetrics creates an aggregator whose rolling window holds capacity
// samples (DefaultWindowCapacity when capacity <= 0).
func NewMetrics(capacity int) *Metrics {
	if capacity <= 0 {
		capacity = DefaultWindowCapacity
	}
	return &Metrics{
		window:   make([]float64, 0, capacity),
		capacity: capacity,
	}
}

// RecordWait registers one completion with the given wait in seconds.
// Negative or NaN waits are recorded as 0.
func (m *Metrics) RecordWait(wait float64) {
	if !(wait > 0) || math.IsInf(wait, 0) {
		wait = 0
	}
	m.Completed++
	m.TotalWait += wait
	m.allWaits = append(m.allWaits, wait)

	if len(m.window) < m.capacity {
		m.window = append(m.window, wait)
		return
	}
	m.window[m.head] = wait
	m.head = (m.head + 1) % m.capacity
}

// AverageWait returns TotalWait / Completed, or 0 before the first completion.
func (m *Metrics) AverageWait() float64 {
	if m.Completed == 0 {
		return 0
	}
	return m.TotalWait / float64(m.Completed)
}

// Window returns the windowed samples oldest first.
func (m *Metrics) Window() []float64 {
	out := make([]float64, 0, len(m.window))
	out = append(out, m.window[m.head:]...)
	return append(out, m.window[:m.head]...)
}

// Percentile95 returns the sorted window element at floor(0.95 × n), or 0
// while fewer than MinWindowSamples waits are windowed.
func (m *Metrics) Percentile95() float64 {
	n := len(m.window)
	if n < MinWindowSamples {
		return 0
	}
	sorted := append([]float64(nil), m.window...)
	sort.Float64s(sorted)
	idx := int(math.Floor(0.95 * float64(n)))
	if idx >= n {
		idx = n - 1
	}
	return sorted[idx]
}

// SLACompliance returns the percentage of windowed waits at or below
// targetMinutes. It returns 100 while fewer than MinWindowSamples waits are
// windowed, since there is no evidence of a violation yet.
func (m *Metrics) SLACompliance(targetMinutes float64) float64 {
	n := len(m.window)
	if n < MinWindowSamples {
		return 100
	}
	limit := targetMinutes * 60
	within := 0
	for _, w := range m.window {
		if w <= limit {
			within++
		}
	}
	return float64(within) / float64(n) * 100
}

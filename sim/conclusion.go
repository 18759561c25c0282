package sim

import (
	"fmt"
	"strings"
)

// MinConclusionSamples is the completion count below which a conclusion
// reports that there is not enough data.
const MinConclusionSamples = 30

// LoadBand classifies traffic intensity ρ.
type LoadBand string

const (
	LoadUnstable LoadBand = "unstable" // ρ >= 1
	LoadStrained LoadBand = "strained" // ρ >= 0.9
	LoadModerate LoadBand = "moderate" // ρ >= 0.75
	LoadRelaxed  LoadBand = "relaxed"
)

// SLABand classifies windowed SLA compliance.
type SLABand string

const (
	SLAMet      SLABand = "met"  // >= 95%
	SLANear     SLABand = "near" // >= 85%
	SLAViolated SLABand = "violated"
)

// QueueBand classifies the instantaneous queue length.
type QueueBand string

const (
	QueueNone   QueueBand = "none"
	QueueShort  QueueBand = "short"  // <= 5
	QueueMedium QueueBand = "medium" // <= 15
	QueueLong   QueueBand = "long"
)

func ClassifyLoad(rho float64) LoadBand {
	switch {
	case rho >= 1:
		return LoadUnstable
	case rho >= 0.9:
		return LoadStrained
	case rho >= 0.75:
		return LoadModerate
	default:
		return LoadRelaxed
	}
}

func ClassifySLA(compliancePct float64) SLABand {
	switch {
	case compliancePct >= 95:
		return SLAMet
	case compliancePct >= 85:
		return SLANear
	default:
		return SLAViolated
	}
}

func ClassifyQueue(length int) QueueBand {
	switch {
	case length <= 0:
		return QueueNone
	case length <= 5:
		return QueueShort
	case length <= 15:
		return QueueMedium
	default:
		return QueueLong
	}
}

// Conclusion is the plain-language verdict on a run.
type Conclusion struct {
	Sufficient bool      `json:"sufficient"` // at least MinConclusionSamples completions
	Completed  int       `json:"completed"`
	Model      string    `json:"model"`
	Load       LoadBand  `json:"load,omitempty"`
	SLA        SLABand   `json:"sla,omitempty"`
	Queue      QueueBand `json:"queue,omitempty"`
	Text       string    `json:"text"`
}

var loadText = map[LoadBand]string{
	LoadUnstable: "unstable: demand exceeds service capacity and the line grows without bound.",
	LoadStrained: "heavily loaded: small swings in demand or service times can make the line explode.",
	LoadModerate: "moderately loaded: a line forms but stays manageable.",
	LoadRelaxed:  "comfortably loaded: booths sit idle much of the time.",
}

var queueText = map[QueueBand]string{
	QueueNone:   "No line is visible right now.",
	QueueShort:  "The line is short and clears quickly.",
	QueueMedium: "The line is of medium length but still manageable for the officers.",
	QueueLong:   "The line is long and persistent, hurting the passenger experience.",
}

// Conclude builds the verdict for snap under cfg.
func Conclude(snap Snapshot, cfg SimulationConfig) Conclusion {
	c := Conclusion{
		Completed: snap.Completed,
		Model:     snap.Reference.ModelLabel(),
	}
	if snap.Completed < MinConclusionSamples {
		c.Text = fmt.Sprintf("Only %d passengers served so far; not enough data for a stable conclusion. "+
			"Let the simulation run until at least %d to 50 passengers have been served.", snap.Completed, MinConclusionSamples)
		return c
	}
	c.Sufficient = true
	c.Load = ClassifyLoad(snap.Reference.Rho)
	c.SLA = ClassifySLA(snap.SLACompliance)
	c.Queue = ClassifyQueue(snap.QueueLength)

	var b strings.Builder
	fmt.Fprintf(&b, "With %d passengers served, the %s system runs at %.2f arrivals/minute with a mean service time of %.2f minutes. ",
		snap.Completed, c.Model, cfg.ArrivalRatePerMinute, cfg.MeanServiceSeconds/60)
	fmt.Fprintf(&b, "In theory this gives a traffic intensity ρ ≈ %.2f, so the booths are %s ", snap.Reference.Rho, loadText[c.Load])
	fmt.Fprintf(&b, "The observed mean wait is %.2f minutes and the 95th percentile is about %.2f minutes. ",
		snap.AverageWait/60, snap.P95Wait/60)

	switch c.SLA {
	case SLAMet:
		fmt.Fprintf(&b, "The %g-minute SLA is comfortably met (≈ %.1f%% of passengers wait less). ", snap.SLATargetMinutes, snap.SLACompliance)
	case SLANear:
		fmt.Fprintf(&b, "The %g-minute SLA is nearly met (≈ %.1f%% within target); small changes to the arrival rate or service times would close the gap. ",
			snap.SLATargetMinutes, snap.SLACompliance)
	default:
		fmt.Fprintf(&b, "Only ≈ %.1f%% of passengers stay within the %g-minute SLA, so it is violated systematically. ",
			snap.SLACompliance, snap.SLATargetMinutes)
	}
	b.WriteString(queueText[c.Queue])

	if c.Load == LoadUnstable {
		b.WriteString(" The system is saturated; to stabilize it, reduce the arrival rate or add service capacity.")
	} else {
		b.WriteString(" Use these results to judge whether the current booth setup is sufficient or whether arrivals, queue layout or capacity should change.")
	}
	c.Text = b.String()
	return c
}

// Conclusion returns the verdict for the current state.
func (e *Engine) Conclusion() Conclusion {
	return Conclude(e.Snapshot(), e.cfg)
}

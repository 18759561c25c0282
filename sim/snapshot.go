package sim

import "math"

// JobView is the read-only projection of one passenger in a Snapshot.
type JobView struct {
	ID        string   `json:"id"`
	Seq       int64    `json:"seq"`
	State     JobState `json:"state"`
	ArrivalAt float64  `json:"arrival_at"`
	// QueueRank is the 0-based position in line, -1 while in service.
	QueueRank    int      `json:"queue_rank"`
	ServerIdx    *int     `json:"server_idx,omitempty"`
	ServiceEndAt *float64 `json:"service_end_at,omitempty"`
}

// Snapshot is the read-only view a host renders between ticks.
// It shares no memory with the engine.
type Snapshot struct {
	RunID           string       `json:"run_id"`
	Mode            ScheduleMode `json:"mode"`
	Clock           float64      `json:"clock"`
	Tick            int64        `json:"tick"`
	Paused          bool         `json:"paused"`
	ConclusionReady bool         `json:"conclusion_ready"`

	// Jobs lists queued passengers in FIFO order followed by in-service
	// passengers in booth order.
	Jobs []JobView `json:"jobs"`

	QueueLength int `json:"queue_length"`
	ServerCount int `json:"server_count"`
	BusyServers int `json:"busy_servers"`
	// ServerRemaining[i] is the service time left on booth i (0 when free),
	// including booths that are finishing after a shrink.
	ServerRemaining []float64 `json:"server_remaining"`
	// TimeToNextArrival is nil once an exact schedule is exhausted.
	TimeToNextArrival *float64 `json:"time_to_next_arrival,omitempty"`

	Completed        int     `json:"completed"`
	AverageWait      float64 `json:"average_wait"`
	P95Wait          float64 `json:"p95_wait"`
	SLACompliance    float64 `json:"sla_compliance"`
	SLATargetMinutes float64 `json:"sla_target_minutes"`

	Reference ReferenceModel `json:"reference"`
}

// Snapshot builds the derived view of the current state.
func (e *Engine) Snapshot() Snapshot {
	now := e.clock
	s := Snapshot{
		RunID:            e.runID,
		Mode:             e.source.Mode(),
		Clock:            now,
		Tick:             e.tick,
		Paused:           e.paused,
		ConclusionReady:  e.concluded,
		QueueLength:      e.waitQ.Len(),
		ServerCount:      e.servers.Active(),
		BusyServers:      e.servers.BusyCount(),
		Completed:        e.metrics.Completed,
		AverageWait:      e.metrics.AverageWait(),
		P95Wait:          e.metrics.Percentile95(),
		SLACompliance:    e.metrics.SLACompliance(e.cfg.SLATargetMinutes),
		SLATargetMinutes: e.cfg.SLATargetMinutes,
		Reference:        e.reference,
	}

	if next := e.source.NextArrival(); !math.IsInf(next, 1) {
		ttn := max(next-now, 0)
		s.TimeToNextArrival = &ttn
	}

	slots := e.servers.Slots()
	s.ServerRemaining = make([]float64, len(slots))
	s.Jobs = make([]JobView, 0, e.waitQ.Len()+s.BusyServers)
	for rank, job := range e.waitQ.Ordered() {
		s.Jobs = append(s.Jobs, JobView{
			ID:        job.ID,
			Seq:       job.Seq,
			State:     job.State,
			ArrivalAt: job.ArrivalAt,
			QueueRank: rank,
		})
	}
	for i, slot := range slots {
		s.ServerRemaining[i] = slot.Remaining(now)
		if !slot.Busy() {
			continue
		}
		job := slot.Job
		idx, end := slot.Index, job.ServiceEndAt
		s.Jobs = append(s.Jobs, JobView{
			ID:           job.ID,
			Seq:          job.Seq,
			State:        job.State,
			ArrivalAt:    job.ArrivalAt,
			QueueRank:    -1,
			ServerIdx:    &idx,
			ServiceEndAt: &end,
		})
	}
	return s
}

// Package trace provides event-trace recording for queueing engine runs.
// It has no dependencies on sim/ and stores plain data types.
package trace

// AdmissionRecord captures a passenger joining the queue.
type AdmissionRecord struct {
	JobID     string  `json:"job_id"`
	Seq       int64   `json:"seq"`
	Tick      int64   `json:"tick"`
	Clock     float64 `json:"clock"`      // simulated time of the admitting tick
	ArrivalAt float64 `json:"arrival_at"` // scheduled arrival time
}

// AssignmentRecord captures a queued passenger moving to a booth.
type AssignmentRecord struct {
	JobID   string  `json:"job_id"`
	Seq     int64   `json:"seq"`
	Tick    int64   `json:"tick"`
	Server  int     `json:"server"`
	StartAt float64 `json:"start_at"`
	EndAt   float64 `json:"end_at"`
	Fixed   bool    `json:"fixed"` // duration came from the schedule, not the sampler
}

// CompletionRecord captures a passenger leaving a booth.
type CompletionRecord struct {
	JobID  string  `json:"job_id"`
	Seq    int64   `json:"seq"`
	Tick   int64   `json:"tick"`
	Server int     `json:"server"`
	Clock  float64 `json:"clock"`
	Wait   float64 `json:"wait"` // service start minus arrival, seconds
}

// Defines the Job struct that models one passenger in the simulation.
// Tracks arrival, booth assignment and service timestamps.

package sim

import (
	"fmt"
)

// JobState represents the lifecycle state of a job.
// Completed jobs are removed from the engine, so there is no "done" state.
type JobState string

const (
	JobQueued    JobState = "queue"
	JobInService JobState = "in-service"
)

// Job is a passenger owned and mutated exclusively by the Engine.
type Job struct {
	ID    string   // Unique identifier, "passenger_<seq>"
	Seq   int64    // Arrival sequence number; strictly increasing, breaks arrival-time ties
	State JobState // queue or in-service

	ArrivalAt      float64 // Scheduled arrival time (simulated seconds)
	ServerIdx      int     // Booth index while in service, -1 while queued
	ServiceStartAt float64 // Set on assignment
	ServiceEndAt   float64 // ServiceStartAt + duration

	// FixedService is the schedule-provided duration; <= 0 means "sample".
	FixedService float64
}

func newJob(seq int64, arrivalAt, fixedService float64) *Job {
	return &Job{
		ID:           fmt.Sprintf("passenger_%d", seq),
		Seq:          seq,
		State:        JobQueued,
		ArrivalAt:    arrivalAt,
		ServerIdx:    -1,
		FixedService: fixedService,
	}
}

// Wait returns the time spent queued, clamped at zero against clock rounding.
// Only meaningful once the job has been assigned.
func (j *Job) Wait() float64 {
	w := j.ServiceStartAt - j.ArrivalAt
	if w < 0 {
		return 0
	}
	return w
}

// arrivesBefore is the FIFO order: arrival time, then sequence number.
func (j *Job) arrivesBefore(o *Job) bool {
	if j.ArrivalAt != o.ArrivalAt {
		return j.ArrivalAt < o.ArrivalAt
	}
	return j.Seq < o.Seq
}

// This method returns a human-readable string representation of a Job.
func (j Job) String() string {
	return fmt.Sprintf("Job: (ID: %s, State: %s, ArrivalAt: %.3f, Server: %d)", j.ID, j.State, j.ArrivalAt, j.ServerIdx)
}

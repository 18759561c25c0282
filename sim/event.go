package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/booth-sim/sim/trace"
)

// The engine emits three events per passenger: admission into the line,
// assignment to a booth, and completion. Each is logged at debug level and,
// when tracing is enabled, appended to the run's SimulationTrace.

func (e *Engine) recordAdmission(job *Job, now float64) {
	logrus.Debugf("<< Arrival: %s scheduled %.3fs admitted at %.3fs", job.ID, job.ArrivalAt, now)
	if e.trace == nil {
		return
	}
	e.trace.RecordAdmission(trace.AdmissionRecord{
		JobID:     job.ID,
		Seq:       job.Seq,
		Tick:      e.tick,
		Clock:     now,
		ArrivalAt: job.ArrivalAt,
	})
}

func (e *Engine) recordAssignment(job *Job, fixed bool) {
	logrus.Debugf("<< Assign: %s to booth %d, %.3fs -> %.3fs (waited %.3fs)",
		job.ID, job.ServerIdx, job.ServiceStartAt, job.ServiceEndAt, job.Wait())
	if e.trace == nil {
		return
	}
	e.trace.RecordAssignment(trace.AssignmentRecord{
		JobID:   job.ID,
		Seq:     job.Seq,
		Tick:    e.tick,
		Server:  job.ServerIdx,
		StartAt: job.ServiceStartAt,
		EndAt:   job.ServiceEndAt,
		Fixed:   fixed,
	})
}

func (e *Engine) recordCompletion(job *Job, now float64) {
	logrus.Debugf("<< Completion: %s left booth %d at %.3fs", job.ID, job.ServerIdx, now)
	if e.trace == nil {
		return
	}
	e.trace.RecordCompletion(trace.CompletionRecord{
		JobID:  job.ID,
		Seq:    job.Seq,
		Tick:   e.tick,
		Server: job.ServerIdx,
		Clock:  now,
		Wait:   job.Wait(),
	})
}

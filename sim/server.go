package sim

import "fmt"

// ServerSlot is one booth. It holds at most one job; it is busy exactly while
// Job is non-nil and frees when simulated time reaches BusyUntil.
type ServerSlot struct {
	Index     int
	Job       *Job
	BusyUntil float64 // valid only while Job != nil
	retired   bool    // beyond the configured count; finishes its job then disappears
}

// Busy reports whether the slot holds a job.
func (s *ServerSlot) Busy() bool {
	return s.Job != nil
}

// Remaining returns the service time left at now, or 0 when free.
func (s *ServerSlot) Remaining(now float64) float64 {
	if s.Job == nil {
		return 0
	}
	return max(s.BusyUntil-now, 0)
}

// ServerPool holds the booths in index order.
//
// Shrinking never evicts a job: slots past the new count are marked retired,
// stop receiving assignments, finish their current job, and are dropped once
// free and at the tail.
type ServerPool struct {
	slots  []*ServerSlot
	active int
}

// NewServerPool creates n free slots.
func NewServerPool(n int) *ServerPool {
	p := &ServerPool{}
	p.Resize(n)
	return p
}

// Active returns the configured booth count.
func (p *ServerPool) Active() int {
	return p.active
}

// Slots returns every slot including retiring ones, in index order.
// Callers MUST NOT append to or reslice the returned slice.
func (p *ServerPool) Slots() []*ServerSlot {
	return p.slots
}

// BusyCount returns the number of slots currently holding a job.
func (p *ServerPool) BusyCount() int {
	n := 0
	for _, s := range p.slots {
		if s.Busy() {
			n++
		}
	}
	return n
}

// Resize sets the configured booth count to n (n >= 1).
func (p *ServerPool) Resize(n int) {
	if n < 1 {
		panic(fmt.Sprintf("Resize: server count must be >= 1, got %d", n))
	}
	for len(p.slots) < n {
		p.slots = append(p.slots, &ServerSlot{Index: len(p.slots)})
	}
	for i, s := range p.slots {
		s.retired = i >= n
	}
	p.active = n
	p.compact()
}

// assign starts job on slot idx.
func (p *ServerPool) assign(idx int, job *Job, now, duration float64) {
	s := p.slots[idx]
	if s.Busy() {
		panic(fmt.Sprintf("assign: slot %d already holds %s", idx, s.Job.ID))
	}
	if s.retired {
		panic(fmt.Sprintf("assign: slot %d is retired", idx))
	}
	job.State = JobInService
	job.ServerIdx = idx
	job.ServiceStartAt = now
	job.ServiceEndAt = now + duration
	s.Job = job
	s.BusyUntil = job.ServiceEndAt
}

// release frees slot idx and returns the job it held.
func (p *ServerPool) release(idx int) *Job {
	s := p.slots[idx]
	job := s.Job
	s.Job = nil
	s.BusyUntil = 0
	return job
}

// compact drops free retired slots from the tail.
func (p *ServerPool) compact() {
	n := len(p.slots)
	for n > p.active && !p.slots[n-1].Busy() {
		p.slots[n-1] = nil
		n--
	}
	p.slots = p.slots[:n]
}

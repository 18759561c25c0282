// Implements the WaitQueue, which holds all passengers waiting for a booth.
// Passengers are enqueued on arrival and dequeued by the assignment pass.

package sim

import (
	"container/heap"
	"fmt"
	"sort"
	"strings"
)

// WaitQueue is the single FIFO line in front of the booths.
// Order is (ArrivalAt, Seq) and never depends on insertion order, so a
// burst admitted in one tick is served strictly by sequence number.
type WaitQueue struct {
	jobs jobHeap
}

// jobHeap implements heap.Interface ordered by Job.arrivesBefore.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type jobHeap []*Job

func (h jobHeap) Len() int           { return len(h) }
func (h jobHeap) Less(i, j int) bool { return h[i].arrivesBefore(h[j]) }
func (h jobHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *jobHeap) Push(x any) {
	*h = append(*h, x.(*Job))
}

func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return item
}

// Enqueue adds a job to the line.
func (wq *WaitQueue) Enqueue(j *Job) {
	if j == nil {
		panic("Enqueue: job must not be nil")
	}
	heap.Push(&wq.jobs, j)
}

// Len returns the number of queued jobs.
func (wq *WaitQueue) Len() int {
	return wq.jobs.Len()
}

// Peek returns the earliest-arrived job without removing it.
// Returns nil if the queue is empty.
func (wq *WaitQueue) Peek() *Job {
	if wq.jobs.Len() == 0 {
		return nil
	}
	return wq.jobs[0]
}

// Dequeue removes and returns the earliest-arrived job, or nil.
func (wq *WaitQueue) Dequeue() *Job {
	if wq.jobs.Len() == 0 {
		return nil
	}
	return heap.Pop(&wq.jobs).(*Job)
}

// Ordered returns the queued jobs front to back. The slice is a copy;
// the jobs are shared and MUST NOT be mutated by callers.
func (wq *WaitQueue) Ordered() []*Job {
	out := make([]*Job, len(wq.jobs))
	copy(out, wq.jobs)
	sort.Slice(out, func(i, j int) bool { return out[i].arrivesBefore(out[j]) })
	return out
}

func (wq *WaitQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, j := range wq.Ordered() {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(fmt.Sprint(j.ID))
	}
	sb.WriteString("]")
	return sb.String()
}

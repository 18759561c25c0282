// Package sim provides the tick-driven queueing engine behind the booth
// simulator: passengers arrive, wait in a single FIFO line and are served
// by one of c identical booths (an M/G/1 or M/G/c system).
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - job.go: Job lifecycle (queue → in-service → removed)
//   - schedule.go: stochastic and exact-schedule arrival sources
//   - engine.go: the tick (completion pass, arrival pass, assignment pass)
//   - metrics.go: running and windowed wait statistics
//   - reference.go: closed-form M/G/1 baseline
//
// # Ownership
//
// An Engine owns every job, server slot, clock and accumulator. Hosts call
// Tick once per frame, read a Snapshot, and issue commands (Pause, Resume,
// Reset, SetServerCount) between ticks. Nothing in this package blocks or
// spawns goroutines; sim/host wraps an Engine in a frame loop.
//
// # Sub-packages
//   - sim/workload/: scenario files, CSV schedule import, parameter derivation
//   - sim/trace/: per-run admission/assignment/completion records
//   - sim/host/: headless and wall-clock frame loops
package sim

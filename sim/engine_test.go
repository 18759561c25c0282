package sim

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/booth-sim/sim/trace"
)

func TestEngine_ExactSchedule_ReplaysArrivalsAndDurations(t *testing.T) {
	// GIVEN arrivals at 0, 5, 5, 12 with 3s services on one booth
	cfg := exactConfig(1, []float64{0, 5, 5, 12}, []float64{3, 3, 3, 3})
	e := mustEngine(t, cfg)
	assert.Equal(t, 0.0, e.Clock(), "exact mode never fast-forwards")

	// WHEN the run is ticked past the last departure
	tickUntil(e, halfStepRealDelta, 20)

	// THEN every passenger was served in order with the scheduled durations
	st := e.Trace()
	require.Len(t, st.Completions, 4)
	starts := assignmentStarts(st)
	assert.Equal(t, 0.5, starts["passenger_0"], "first arrival is admitted on the first tick")
	assert.Equal(t, 5.0, starts["passenger_1"])
	assert.Equal(t, 8.0, starts["passenger_2"], "second t=5 arrival waits for the first")
	assert.Equal(t, 12.0, starts["passenger_3"])
	for _, a := range st.Assignments {
		assert.True(t, a.Fixed, "%s should use its scheduled duration", a.JobID)
		assert.InDelta(t, 3.0, a.EndAt-a.StartAt, 1e-12)
	}

	// AND the two t=5 arrivals were admitted on the same tick
	require.Len(t, st.Admissions, 4)
	assert.Equal(t, st.Admissions[1].Tick, st.Admissions[2].Tick)
	assert.Less(t, st.Admissions[1].Seq, st.Admissions[2].Seq)

	// AND waits are measured from the scheduled arrival time
	m := e.Metrics()
	assert.Equal(t, 4, m.Completed)
	assert.InDelta(t, 0.5+0+3+0, m.TotalWait, 1e-12)
	assert.True(t, e.Drained())
	assert.Nil(t, e.Snapshot().TimeToNextArrival, "no next arrival once the schedule is exhausted")
}

func TestEngine_ExactSchedule_MissingDurationsAreSampled(t *testing.T) {
	cfg := exactConfig(1, []float64{0, 1, 2}, []float64{4, 0})
	e := mustEngine(t, cfg)
	tickUntil(e, halfStepRealDelta, 200)

	st := e.Trace()
	require.Len(t, st.Assignments, 3)
	assert.True(t, st.Assignments[0].Fixed)
	assert.False(t, st.Assignments[1].Fixed, "zero duration means sample")
	assert.False(t, st.Assignments[2].Fixed, "missing duration means sample")
	for _, a := range st.Assignments {
		assert.GreaterOrEqual(t, a.EndAt-a.StartAt, MinServiceSeconds)
	}
}

func TestEngine_FIFO_AssignmentOrderFollowsArrivalOrder(t *testing.T) {
	// GIVEN a heavily loaded two-booth stochastic run
	cfg := DefaultSimulationConfig()
	cfg.ArrivalRatePerMinute = 10
	cfg.MeanServiceSeconds = 15
	cfg.ServerCount = 2
	cfg.SpeedMultiplier = 20
	cfg.AutoConclusionAt = 0
	cfg.TraceLevel = trace.TraceLevelEvents
	e := mustEngine(t, cfg)

	for i := 0; i < 5000; i++ {
		e.Tick(0.05)

		// THEN at every tick no more booths are busy than configured, and
		// nobody waits while a booth is free
		snap := e.Snapshot()
		require.LessOrEqual(t, snap.BusyServers, snap.ServerCount)
		if snap.QueueLength > 0 {
			require.Equal(t, snap.ServerCount, snap.BusyServers, "tick %d: queue non-empty with a free booth", i)
		}
	}

	// AND booths were handed out strictly in arrival order
	st := e.Trace()
	require.NotEmpty(t, st.Assignments)
	for i, a := range st.Assignments {
		assert.Equal(t, int64(i), a.Seq)
	}
	for i := 1; i < len(st.Admissions); i++ {
		assert.LessOrEqual(t, st.Admissions[i-1].ArrivalAt, st.Admissions[i].ArrivalAt)
	}
}

func TestEngine_Reset_SameSeedReproducesRun(t *testing.T) {
	cfg := DefaultSimulationConfig()
	cfg.ArrivalRatePerMinute = 4
	cfg.MeanServiceSeconds = 20
	cfg.SpeedMultiplier = 10
	cfg.Seed = 7
	cfg.AutoConclusionAt = 0
	cfg.TraceLevel = trace.TraceLevelEvents

	e := mustEngine(t, cfg)
	for i := 0; i < 3000; i++ {
		e.Tick(0.05)
	}
	first := *e.Trace()
	firstRun := e.RunID()
	firstWait := e.Metrics().TotalWait
	require.NotEmpty(t, first.Completions)

	// WHEN the engine is reset with the same config and replayed
	require.NoError(t, e.Reset(cfg))
	assert.Equal(t, 0, e.Metrics().Completed, "reset clears accumulators")
	for i := 0; i < 3000; i++ {
		e.Tick(0.05)
	}

	// THEN the event sequence is identical but the run identity is new
	second := *e.Trace()
	assert.Equal(t, first.Admissions, second.Admissions)
	assert.Equal(t, first.Assignments, second.Assignments)
	assert.Equal(t, first.Completions, second.Completions)
	assert.Equal(t, firstWait, e.Metrics().TotalWait)
	assert.NotEqual(t, firstRun, e.RunID())
}

func TestEngine_Reset_InvalidConfigLeavesEngineUntouched(t *testing.T) {
	e := mustEngine(t, exactConfig(1, []float64{0}, []float64{1}))
	e.Tick(halfStepRealDelta)
	runID, clock := e.RunID(), e.Clock()

	bad := DefaultSimulationConfig()
	bad.ServerCount = -1
	err := e.Reset(bad)

	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Equal(t, runID, e.RunID())
	assert.Equal(t, clock, e.Clock())
}

func TestNewEngine_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultSimulationConfig()
	cfg.MeanServiceSeconds = math.NaN()
	e, err := NewEngine(cfg)
	assert.Nil(t, e)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEngine_Pause_TickHasNoEffect(t *testing.T) {
	e := mustEngine(t, exactConfig(1, []float64{0, 1}, []float64{5, 5}))
	e.Tick(halfStepRealDelta)
	e.Pause()
	before := e.Snapshot()

	assert.False(t, e.Tick(halfStepRealDelta))
	assert.Equal(t, before, e.Snapshot())

	e.Resume()
	assert.True(t, e.Tick(halfStepRealDelta))
	assert.Equal(t, 1.0, e.Clock())
}

func TestEngine_Tick_ClampsRealDelta(t *testing.T) {
	cfg := exactConfig(1, []float64{100}, nil)
	cfg.SpeedMultiplier = 1
	e := mustEngine(t, cfg)

	// WHEN a stalled frame reports 10 seconds of real time
	e.Tick(10)
	// THEN at most 0.05 simulated seconds pass at speed 1
	assert.InDelta(t, MaxRealDeltaSeconds, e.Clock(), 1e-12)

	// AND nonsense deltas advance nothing
	for _, d := range []float64{-1, math.NaN(), 0} {
		e.Tick(d)
	}
	assert.InDelta(t, MaxRealDeltaSeconds, e.Clock(), 1e-12)
}

func TestEngine_SetServerCount_ShrinkLetsRetiringBoothFinish(t *testing.T) {
	// GIVEN two booths serving two passengers and a third waiting
	e := mustEngine(t, exactConfig(2, []float64{0, 0, 0}, []float64{10, 10, 10}))
	e.Tick(halfStepRealDelta)
	require.Equal(t, 2, e.Snapshot().BusyServers)
	require.Equal(t, 1, e.QueueLength())

	// WHEN the booth count drops to one
	require.NoError(t, e.SetServerCount(1))

	// THEN the retiring booth keeps its passenger
	snap := e.Snapshot()
	assert.Equal(t, 1, snap.ServerCount)
	assert.Equal(t, 2, snap.BusyServers)
	assert.Len(t, snap.ServerRemaining, 2)
	assert.InDelta(t, 1.5, snap.Reference.Rho, 1e-12, "reference follows the new count") // 2/min × 45s on one booth

	// WHEN both finish
	tickUntil(e, halfStepRealDelta, 10.5)

	// THEN only booth 0 takes the waiting passenger and booth 1 is gone
	snap = e.Snapshot()
	assert.Equal(t, 1, snap.BusyServers)
	assert.Len(t, snap.ServerRemaining, 1)
	st := e.Trace()
	require.Len(t, st.Assignments, 3)
	assert.Equal(t, 0, st.Assignments[2].Server)
	assert.Equal(t, 10.5, st.Assignments[2].StartAt)
}

func TestEngine_SetServerCount_GrowServesQueueNextTick(t *testing.T) {
	e := mustEngine(t, exactConfig(1, []float64{0, 0}, []float64{10, 10}))
	e.Tick(halfStepRealDelta)
	require.Equal(t, 1, e.QueueLength())

	require.NoError(t, e.SetServerCount(2))
	assert.Equal(t, 1, e.QueueLength(), "no assignment outside a tick")

	e.Tick(halfStepRealDelta)
	assert.Equal(t, 0, e.QueueLength())
	st := e.Trace()
	require.Len(t, st.Assignments, 2)
	assert.Equal(t, 1, st.Assignments[1].Server)
	assert.Equal(t, 1.0, st.Assignments[1].StartAt)
}

func TestEngine_SetServerCount_RejectsBelowOne(t *testing.T) {
	e := mustEngine(t, DefaultSimulationConfig())
	assert.ErrorIs(t, e.SetServerCount(0), ErrInvalidConfig)
	assert.Equal(t, 1, e.Config().ServerCount)
}

func TestEngine_FastForward_SkipsIdleStart(t *testing.T) {
	cfg := DefaultSimulationConfig()
	cfg.ArrivalRatePerMinute = 0.01 // first arrival ~100 minutes out
	cfg.Seed = 3

	// The arrivals stream draws from the master seed directly.
	first := SampleExponential(rand.New(rand.NewSource(cfg.Seed)), cfg.ArrivalRatePerMinute/60)
	require.Greater(t, first, fastForwardGap)

	e := mustEngine(t, cfg)
	assert.InDelta(t, first-fastForwardLead, e.Clock(), 1e-9)
	ttn := e.Snapshot().TimeToNextArrival
	require.NotNil(t, ttn)
	assert.InDelta(t, fastForwardLead, *ttn, 1e-9)

	cfg.DisableFastForward = true
	e = mustEngine(t, cfg)
	assert.Equal(t, 0.0, e.Clock())
}

func TestEngine_AutoConclusion_PausesOncePerRun(t *testing.T) {
	cfg := exactConfig(1, []float64{0, 1, 2, 3, 4}, []float64{0.5, 0.5, 0.5, 0.5, 0.5})
	cfg.AutoConclusionAt = 3
	e := mustEngine(t, cfg)

	tickUntil(e, halfStepRealDelta, 100)
	assert.True(t, e.Paused())
	assert.True(t, e.ConclusionReady())
	assert.Equal(t, 3, e.Metrics().Completed)

	// WHEN resumed, the run continues without pausing again
	e.Resume()
	tickUntil(e, halfStepRealDelta, 10)
	assert.False(t, e.Paused())
	assert.Equal(t, 5, e.Metrics().Completed)

	// AND reset re-arms it
	require.NoError(t, e.Reset(cfg))
	assert.False(t, e.ConclusionReady())
	assert.False(t, e.Paused())
}

func TestEngine_Snapshot_ListsQueueThenBooths(t *testing.T) {
	e := mustEngine(t, exactConfig(1, []float64{0, 0, 0}, []float64{10, 10, 10}))
	e.Tick(halfStepRealDelta)

	snap := e.Snapshot()
	require.Len(t, snap.Jobs, 3)
	assert.Equal(t, "passenger_1", snap.Jobs[0].ID)
	assert.Equal(t, 0, snap.Jobs[0].QueueRank)
	assert.Nil(t, snap.Jobs[0].ServerIdx)
	assert.Equal(t, "passenger_2", snap.Jobs[1].ID)
	assert.Equal(t, 1, snap.Jobs[1].QueueRank)

	inService := snap.Jobs[2]
	assert.Equal(t, "passenger_0", inService.ID)
	assert.Equal(t, JobInService, inService.State)
	require.NotNil(t, inService.ServerIdx)
	assert.Equal(t, 0, *inService.ServerIdx)
	require.NotNil(t, inService.ServiceEndAt)
	assert.Equal(t, 10.5, *inService.ServiceEndAt)
	assert.Equal(t, []float64{10}, snap.ServerRemaining)
	assert.Equal(t, ModeExact, snap.Mode)
}

func TestEngine_TracingDisabledByDefault(t *testing.T) {
	e := mustEngine(t, DefaultSimulationConfig())
	assert.Nil(t, e.Trace())
}

func TestEngine_MonteCarlo_AverageWaitNearPollaczekKhinchine(t *testing.T) {
	if testing.Short() {
		t.Skip("long Monte Carlo run")
	}
	// GIVEN λ=3/min, E[S]=12s, CV=0.5, one booth → reference Wq = 11.25s
	cfg := DefaultSimulationConfig()
	cfg.ArrivalRatePerMinute = 3
	cfg.MeanServiceSeconds = 12
	cfg.ServiceCV = 0.5
	cfg.SpeedMultiplier = 4
	cfg.AutoConclusionAt = 0
	cfg.Seed = 2024
	e := mustEngine(t, cfg)
	require.InDelta(t, 11.25, e.Reference().WqSeconds, 1e-9)

	// WHEN 10,000 passengers are served
	for e.Metrics().Completed < 10000 {
		e.Tick(0.05)
	}

	// THEN the observed mean wait is within 25% of the analytical value
	assert.InEpsilon(t, 11.25, e.Metrics().AverageWait(), 0.25)
}

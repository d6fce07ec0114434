package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitsync/splitsync/internal/models"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestStopwatch_InitialState(t *testing.T) {
	sw := models.NewStopwatch()

	assert.False(t, sw.IsRunning())
	assert.Equal(t, time.Duration(0), sw.Elapsed(base))
	assert.Empty(t, sw.Laps())

	_, ok := sw.StartTime()
	assert.False(t, ok, "stopped stopwatch should have no start baseline")
}

func TestStopwatch_StartStop(t *testing.T) {
	sw := models.NewStopwatch()

	require.True(t, sw.Start(base))
	assert.True(t, sw.IsRunning())

	start, ok := sw.StartTime()
	require.True(t, ok)
	assert.Equal(t, base, start)

	// Elapsed is computed on demand while running
	assert.Equal(t, 40*time.Millisecond, sw.Elapsed(base.Add(40*time.Millisecond)))

	require.True(t, sw.Stop(base.Add(100*time.Millisecond)))
	assert.False(t, sw.IsRunning())
	assert.Equal(t, 100*time.Millisecond, sw.Elapsed(base.Add(time.Hour)), "elapsed stays frozen after stop")

	_, ok = sw.StartTime()
	assert.False(t, ok)
}

func TestStopwatch_DoubleStartFails(t *testing.T) {
	sw := models.NewStopwatch()

	require.True(t, sw.Start(base))
	assert.False(t, sw.Start(base.Add(time.Second)))

	// The rejected start must not move the baseline
	start, ok := sw.StartTime()
	require.True(t, ok)
	assert.Equal(t, base, start)
}

func TestStopwatch_StopWhileStoppedFails(t *testing.T) {
	sw := models.NewStopwatch()

	assert.False(t, sw.Stop(base))

	require.True(t, sw.Start(base))
	require.True(t, sw.Stop(base.Add(50*time.Millisecond)))
	assert.False(t, sw.Stop(base.Add(time.Second)))
	assert.Equal(t, 50*time.Millisecond, sw.Elapsed(base.Add(time.Second)))
}

func TestStopwatch_ResumeAccumulatesElapsed(t *testing.T) {
	sw := models.NewStopwatch()

	require.True(t, sw.Start(base))
	require.True(t, sw.Stop(base.Add(100*time.Millisecond)))

	// Restart five seconds later: the baseline is backdated so the total
	// continues from 100ms instead of starting over.
	resume := base.Add(5 * time.Second)
	require.True(t, sw.Start(resume))

	start, ok := sw.StartTime()
	require.True(t, ok)
	assert.Equal(t, resume.Add(-100*time.Millisecond), start)

	require.True(t, sw.Stop(resume.Add(50*time.Millisecond)))
	assert.Equal(t, 150*time.Millisecond, sw.Elapsed(resume.Add(time.Minute)))
}

func TestStopwatch_ResetAlwaysSucceeds(t *testing.T) {
	t.Run("from running", func(t *testing.T) {
		sw := models.NewStopwatch()
		require.True(t, sw.Start(base))
		_, ok := sw.RecordLap(base.Add(10 * time.Millisecond))
		require.True(t, ok)

		sw.Reset()

		assert.False(t, sw.IsRunning())
		assert.Equal(t, time.Duration(0), sw.Elapsed(base.Add(time.Hour)))
		assert.Empty(t, sw.Laps())
	})

	t.Run("from stopped", func(t *testing.T) {
		sw := models.NewStopwatch()
		require.True(t, sw.Start(base))
		require.True(t, sw.Stop(base.Add(time.Second)))

		sw.Reset()

		assert.False(t, sw.IsRunning())
		assert.Equal(t, time.Duration(0), sw.Elapsed(base))
	})
}

func TestStopwatch_RecordLap(t *testing.T) {
	sw := models.NewStopwatch()

	_, ok := sw.RecordLap(base)
	assert.False(t, ok, "laps require a running stopwatch")

	require.True(t, sw.Start(base))

	lap1, ok := sw.RecordLap(base.Add(10 * time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, 1, lap1.Number)
	assert.Equal(t, 10*time.Millisecond, lap1.Time)

	lap2, ok := sw.RecordLap(base.Add(15 * time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, 2, lap2.Number)
	assert.Equal(t, 15*time.Millisecond, lap2.Time)

	// Recording a lap does not interrupt the run
	assert.True(t, sw.IsRunning())
	assert.Len(t, sw.Laps(), 2)

	require.True(t, sw.Stop(base.Add(time.Second)))
	_, ok = sw.RecordLap(base.Add(2 * time.Second))
	assert.False(t, ok)
	assert.Len(t, sw.Laps(), 2, "rejected lap must not be recorded")
}

func TestStopwatch_LapsReturnsCopy(t *testing.T) {
	sw := models.NewStopwatch()
	require.True(t, sw.Start(base))
	_, ok := sw.RecordLap(base.Add(10 * time.Millisecond))
	require.True(t, ok)

	laps := sw.Laps()
	laps[0].Number = 99

	assert.Equal(t, 1, sw.Laps()[0].Number)
}

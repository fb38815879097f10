package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalSchedulerRunsImmediatelyAndRepeats(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := NewIntervalScheduler(10*time.Millisecond, nil)
	require.NoError(t, s.Start(context.Background(), func(time.Time) { runs.Add(1) }))

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no runs after Stop")
}

func TestIntervalSchedulerStartTwiceIsNoop(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := NewIntervalScheduler(time.Hour, nil)
	job := func(time.Time) { runs.Add(1) }
	require.NoError(t, s.Start(context.Background(), job))
	require.NoError(t, s.Start(context.Background(), job))

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, int32(1), runs.Load())
}

func TestIntervalSchedulerStopWaitsForJob(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	s := NewIntervalScheduler(time.Hour, nil)
	require.NoError(t, s.Start(context.Background(), func(time.Time) {
		close(started)
		<-release
		finished.Store(true)
	}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Stop(ctx), context.DeadlineExceeded)

	close(release)
	require.Eventually(t, finished.Load, time.Second, 5*time.Millisecond)
}

func TestIntervalSchedulerTriggerLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+3", 3*60*60)
	got := make(chan time.Time, 1)
	s := NewIntervalScheduler(time.Hour, loc)
	require.NoError(t, s.Start(context.Background(), func(tr time.Time) {
		select {
		case got <- tr:
		default:
		}
	}))
	defer func() { _ = s.Stop(context.Background()) }()

	select {
	case tr := <-got:
		assert.Equal(t, loc, tr.Location())
	case <-time.After(time.Second):
		t.Fatal("job was not triggered")
	}
}

func TestIntervalSchedulerRejectsZeroInterval(t *testing.T) {
	t.Parallel()

	s := NewIntervalScheduler(0, nil)
	assert.ErrorIs(t, s.Start(context.Background(), func(time.Time) {}), ErrInvalidInterval)
	assert.NoError(t, s.Stop(context.Background()))
}

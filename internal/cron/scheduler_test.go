package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/graingrove-backend/pkg/logger"
)

type fakeLock struct {
	held     bool
	releases int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.held = false
	f.releases++
	return nil
}

type testJob struct {
	name     string
	err      error
	runs     int
	deadline bool
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(ctx context.Context) error {
	t.runs++
	_, t.deadline = ctx.Deadline()
	return t.err
}

type recordingMetrics struct {
	success  []string
	failure  []string
	observed int
}

func (r *recordingMetrics) ObserveDuration(string, time.Duration) { r.observed++ }
func (r *recordingMetrics) IncSuccess(job string)                 { r.success = append(r.success, job) }
func (r *recordingMetrics) IncFailure(job string)                 { r.failure = append(r.failure, job) }

func TestCycleRunsEveryJobEvenAfterFailure(t *testing.T) {
	ok := &testJob{name: "success"}
	failing := &testJob{name: "fail", err: errors.New("boom")}
	lock := &fakeLock{}
	recorder := &recordingMetrics{}
	scheduler, err := NewScheduler(SchedulerParams{
		Logger:  logger.Nop(),
		Jobs:    []Job{ok, nil, failing},
		Lock:    lock,
		Metrics: recorder,
	})
	require.NoError(t, err)

	require.NoError(t, scheduler.cycle(context.Background()))
	assert.Equal(t, 1, ok.runs)
	assert.Equal(t, 1, failing.runs)
	assert.True(t, ok.deadline, "jobs run under a timeout")
	assert.Equal(t, 1, lock.releases)
	assert.Equal(t, 2, recorder.observed)
	assert.Equal(t, []string{"success"}, recorder.success)
	assert.Equal(t, []string{"fail"}, recorder.failure)
}

func TestCycleSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "outbox-retention"}
	scheduler, err := NewScheduler(SchedulerParams{
		Logger: logger.Nop(),
		Jobs:   []Job{job},
		Lock:   &fakeLock{held: true},
	})
	require.NoError(t, err)

	require.NoError(t, scheduler.cycle(context.Background()))
	assert.Zero(t, job.runs)
}

func TestRunStopsOnCancelAfterFirstCycle(t *testing.T) {
	job := &testJob{name: "outbox-retention"}
	scheduler, err := NewScheduler(SchedulerParams{
		Logger:   logger.Nop(),
		Jobs:     []Job{job},
		Lock:     &fakeLock{},
		Interval: time.Hour,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, scheduler.Run(ctx), context.Canceled)
	assert.Equal(t, 1, job.runs)
}

func TestNewSchedulerValidatesAndDefaults(t *testing.T) {
	_, err := NewScheduler(SchedulerParams{Logger: logger.Nop()})
	assert.Error(t, err)

	scheduler, err := NewScheduler(SchedulerParams{Logger: logger.Nop(), Lock: &fakeLock{}})
	require.NoError(t, err)
	assert.Equal(t, defaultInterval, scheduler.interval)
	assert.Equal(t, defaultJobTimeout, scheduler.jobTimeout)
}

package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tabel-bot/internal/infrastructure/scheduler"
	"github.com/jhoicas/tabel-bot/pkg/logger"
)

type countingJobs struct {
	summary   atomic.Int32
	reminders atomic.Int32
}

func (j *countingJobs) DailySummary(context.Context) (int, error) {
	j.summary.Add(1)
	return 1, nil
}

func (j *countingJobs) Reminders(context.Context) (int, error) {
	j.reminders.Add(1)
	return 0, errors.New("store down")
}

func TestNew_RegistersJobs(t *testing.T) {
	s, err := scheduler.New(scheduler.Config{
		DailySummary: "0 19 * * *",
		Reminders:    "30 20 * * *",
	}, &countingJobs{}, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, 2, s.Entries())
}

func TestNew_EmptySpecDisablesJob(t *testing.T) {
	s, err := scheduler.New(scheduler.Config{DailySummary: "0 19 * * *"}, &countingJobs{}, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, s.Entries())
}

func TestNew_BadSpec(t *testing.T) {
	_, err := scheduler.New(scheduler.Config{DailySummary: "every evening"}, &countingJobs{}, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daily_summary")
}

func TestRun_UsesLocationAndStops(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Kaliningrad")
	require.NoError(t, err)
	s, err := scheduler.New(scheduler.Config{
		DailySummary: "0 19 * * *",
		Location:     loc,
	}, &countingJobs{}, logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return !s.Next().IsZero() }, time.Second, 10*time.Millisecond)
	next := s.Next().In(loc)
	assert.Equal(t, 19, next.Hour())
	assert.Equal(t, 0, next.Minute())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestRun_FiresEverySecondSpec(t *testing.T) {
	jobs := &countingJobs{}
	s, err := scheduler.New(scheduler.Config{
		DailySummary: "@every 1s",
		Reminders:    "@every 1s",
	}, jobs, logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return jobs.summary.Load() > 0 && jobs.reminders.Load() > 0
	}, 3*time.Second, 50*time.Millisecond)
}

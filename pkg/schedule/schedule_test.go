package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJobRunsImmediatelyAndRepeats(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New()

	var runs atomic.Int32
	s.Every(20*time.Millisecond, "tick", func(context.Context) error {
		runs.Add(1)
		return nil
	})
	s.Start(ctx)

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	s.Wait()
}

func TestFailingAndPanickingJobsKeepRunning(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New()

	var failed, panicked atomic.Int32
	s.Every(10*time.Millisecond, "fails", func(context.Context) error {
		failed.Add(1)
		return errors.New("boom")
	})
	s.Every(10*time.Millisecond, "panics", func(context.Context) error {
		panicked.Add(1)
		panic("boom")
	})
	s.Start(ctx)

	assert.Eventually(t, func() bool { return failed.Load() >= 2 && panicked.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	s.Wait()
}

func TestRegistrationRules(t *testing.T) {
	s := New()
	s.Every(0, "never", func(context.Context) error { return nil })
	s.Every(time.Minute, "markets.warm", func(context.Context) error { return nil })
	assert.Equal(t, []string{"markets.warm  [1m0s]"}, s.List())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Start(ctx)
	s.Every(time.Minute, "late", func(context.Context) error { return nil })
	assert.Len(t, s.List(), 1)
	s.Wait()
}

package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 */6 * * *"))
	assert.NoError(t, ValidateSchedule("30 3 * * *"))
	assert.Error(t, ValidateSchedule("every six hours"))
	assert.Error(t, ValidateSchedule("0 0 */6 * * *"), "seconds field is not accepted")
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Every 6 hours", Describe("0 */6 * * *"))
	assert.Equal(t, "Custom schedule: 5 4 * * *", Describe("5 4 * * *"))
}

func TestScheduler_Add(t *testing.T) {
	s := New(zerolog.Nop())
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.Add(Job{Name: "refresh", Schedule: "0 * * * *", Run: noop}))
	assert.Error(t, s.Add(Job{Name: "refresh", Schedule: "0 * * * *", Run: noop}), "duplicate name")
	assert.Error(t, s.Add(Job{Name: "bad", Schedule: "nope", Run: noop}))
	assert.Error(t, s.Add(Job{Name: "no-run", Schedule: "0 * * * *"}))
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.Add(Job{Name: "refresh", Schedule: "0 * * * *", Run: func(context.Context) error { return nil }}))

	assert.Nil(t, s.NextRun("refresh"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	assert.True(t, s.IsRunning())

	next := s.NextRun("refresh")
	require.NotNil(t, next)
	assert.True(t, next.After(time.Now()))
	assert.Nil(t, s.NextRun("unknown"))

	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop()
}

func TestScheduler_StopsWithContext(t *testing.T) {
	s := New(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.Nop())
	ran := make(chan struct{}, 2)

	require.NoError(t, s.Add(Job{Name: "ok", Schedule: "0 0 * * *", Run: func(context.Context) error {
		ran <- struct{}{}
		return nil
	}}))
	require.NoError(t, s.Add(Job{Name: "failing", Schedule: "0 0 * * *", Run: func(context.Context) error {
		ran <- struct{}{}
		return errors.New("boom")
	}}))

	require.NoError(t, s.RunNow("ok"))
	require.NoError(t, s.RunNow("failing"))
	for i := 0; i < 2; i++ {
		select {
		case <-ran:
		case <-time.After(time.Second):
			t.Fatal("job did not run")
		}
	}

	assert.Error(t, s.RunNow("missing"))
}

func TestScheduler_RecoversPanickingJob(t *testing.T) {
	s := New(zerolog.Nop())
	done := make(chan struct{})

	require.NoError(t, s.Add(Job{Name: "panics", Schedule: "0 0 * * *", Run: func(context.Context) error {
		defer close(done)
		panic("boom")
	}}))

	require.NoError(t, s.RunNow("panics"))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not run")
	}
}

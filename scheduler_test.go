package rx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImmediateSchedulerRunsSynchronously(t *testing.T) {
	ran := false
	d := ImmediateScheduler.Schedule(func() { ran = true })
	assert.True(t, ran)
	assert.Nil(t, d)
}

func TestImmediateSchedulerRejectsDelayedWork(t *testing.T) {
	assert.Panics(t, func() {
		ImmediateScheduler.ScheduleAfter(time.Now(), func() {})
	})
	assert.Panics(t, func() {
		ImmediateScheduler.ScheduleAfterInterval(time.Now(), time.Second, 0, func() {})
	})
}

func TestQueueSchedulerPreservesOrder(t *testing.T) {
	s := NewQueueScheduler("test-order")
	defer s.Teardown()

	var mu chanResult
	mu.ch = make(chan int, 10)
	for i := 0; i < 10; i++ {
		i := i
		s.Schedule(func() { mu.ch <- i })
	}
	for i := 0; i < 10; i++ {
		require.Equal(t, i, <-mu.ch)
	}
}

type chanResult struct {
	ch chan int
}

func TestQueueSchedulerCancelBeforeRun(t *testing.T) {
	s := NewQueueScheduler("test-cancel")
	defer s.Teardown()

	done := make(chan struct{})
	// occupy the worker so the second task is still queued when cancelled
	s.Schedule(func() { <-done })
	ran := false
	d := s.Schedule(func() { ran = true })
	d.Dispose()
	close(done)
	time.Sleep(20 * time.Millisecond)
	assert.False(t, ran)
}

func TestQueueSchedulerScheduleAfter(t *testing.T) {
	s := NewQueueScheduler("test-after")
	defer s.Teardown()

	result := make(chan struct{})
	start := time.Now()
	s.ScheduleAfter(start.Add(30*time.Millisecond), func() { close(result) })
	select {
	case <-result:
		assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delayed work")
	}
}

func TestQueueSchedulerScheduleAfterIntervalTicksRepeatedly(t *testing.T) {
	s := NewQueueScheduler("test-interval")
	defer s.Teardown()

	ticks := make(chan struct{}, 10)
	d := s.ScheduleAfterInterval(time.Now().Add(10*time.Millisecond), 10*time.Millisecond, time.Millisecond, func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})
	defer d.Dispose()

	for i := 0; i < 3; i++ {
		select {
		case <-ticks:
		case <-time.After(time.Second):
			t.Fatalf("did not receive tick %d", i)
		}
	}
}

func TestQueueSchedulerTeardownFaultsFurtherScheduling(t *testing.T) {
	s := NewQueueScheduler("test-teardown")
	s.Teardown()
	assert.Panics(t, func() { s.Schedule(func() {}) })
}

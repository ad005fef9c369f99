package rx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapSignal(t *testing.T) {
	s, input, interrupt := Pipe[int, string]()
	defer interrupt.Dispose()
	mapped := MapSignal(s, func(v int) string { return string(rune('a' + v)) })

	var got []string
	mapped.ObserveValues(func(v string) { got = append(got, v) })
	input.SendValue(0)
	input.SendValue(1)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestMapErrorSignal(t *testing.T) {
	s, input, _ := Pipe[int, string]()
	mapped := MapErrorSignal(s, func(e string) int { return len(e) })

	var gotErr int
	mapped.ObserveFailed(func(e int) { gotErr = e })
	input.SendFailed("boom")
	assert.Equal(t, 4, gotErr)
}

func TestFilterSignal(t *testing.T) {
	s, input, interrupt := Pipe[int, string]()
	defer interrupt.Dispose()
	evens := FilterSignal(s, func(v int) bool { return v%2 == 0 })

	var got []int
	evens.ObserveValues(func(v int) { got = append(got, v) })
	for i := 0; i < 5; i++ {
		input.SendValue(i)
	}
	assert.Equal(t, []int{0, 2, 4}, got)
}

func TestTakeSignal(t *testing.T) {
	s, input, interrupt := Pipe[int, string]()
	defer interrupt.Dispose()
	taken := TakeSignal(s, 2)

	var got []int
	completed := false
	taken.Observe(NewObserverWithCallbacks[int, string](
		func(v int) { got = append(got, v) },
		nil,
		func() { completed = true },
		nil,
	))
	input.SendValue(1)
	input.SendValue(2)
	input.SendValue(3)
	assert.Equal(t, []int{1, 2}, got)
	assert.True(t, completed)
}

func TestTakeSignalZero(t *testing.T) {
	s, _, interrupt := Pipe[int, string]()
	defer interrupt.Dispose()
	taken := TakeSignal(s, 0)
	// the result completed on construction, so a later observer gets
	// interrupted, like any observer of a terminated signal.
	interrupted := false
	taken.ObserveInterrupted(func() { interrupted = true })
	assert.True(t, interrupted)
}

func TestSkipSignal(t *testing.T) {
	s, input, interrupt := Pipe[int, string]()
	defer interrupt.Dispose()
	skipped := SkipSignal(s, 2)

	var got []int
	skipped.ObserveValues(func(v int) { got = append(got, v) })
	input.SendValue(1)
	input.SendValue(2)
	input.SendValue(3)
	assert.Equal(t, []int{3}, got)
}

func TestSkipRepeatsSignal(t *testing.T) {
	s, input, interrupt := Pipe[int, string]()
	defer interrupt.Dispose()
	distinct := SkipRepeatsSignal(s, func(a, b int) bool { return a == b })

	var got []int
	distinct.ObserveValues(func(v int) { got = append(got, v) })
	for _, v := range []int{1, 1, 2, 2, 2, 3, 1} {
		input.SendValue(v)
	}
	assert.Equal(t, []int{1, 2, 3, 1}, got)
}

func TestMaterializeDematerializeRoundTrips(t *testing.T) {
	s, input, interrupt := Pipe[int, string]()
	defer interrupt.Dispose()

	materialized := MaterializeSignal(s)
	dematerialized := DematerializeSignal(materialized)

	var got []int
	completed := false
	dematerialized.Observe(NewObserverWithCallbacks[int, string](
		func(v int) { got = append(got, v) },
		nil,
		func() { completed = true },
		nil,
	))

	input.SendValue(1)
	input.SendValue(2)
	input.SendCompleted()
	assert.Equal(t, []int{1, 2}, got)
	assert.True(t, completed)
}

func TestTakeDuringSignalCompletesOnLifetimeEnd(t *testing.T) {
	s, input, interrupt := Pipe[int, string]()
	defer interrupt.Dispose()
	lt, token := NewLifetime()
	during := TakeDuringSignal(s, lt)

	var got []int
	completed, interrupted := false, false
	during.Observe(NewObserverWithCallbacks[int, string](
		func(v int) { got = append(got, v) },
		nil,
		func() { completed = true },
		func() { interrupted = true },
	))

	input.SendValue(1)
	token.End()
	assert.Equal(t, []int{1}, got)
	assert.True(t, completed)
	assert.False(t, interrupted)
}

func TestObserveOnSignalPreservesOrder(t *testing.T) {
	s, input, interrupt := Pipe[int, string]()
	defer interrupt.Dispose()
	sched := NewQueueScheduler("test-observe-on")
	defer sched.Teardown()
	relocated := ObserveOnSignal(s, sched)

	done := make(chan struct{})
	var got []int
	relocated.Observe(NewObserverWithCallbacks[int, string](
		func(v int) { got = append(got, v) },
		nil,
		func() { close(done) },
		nil,
	))

	input.SendValue(1)
	input.SendValue(2)
	input.SendCompleted()
	<-done
	assert.Equal(t, []int{1, 2}, got)
}

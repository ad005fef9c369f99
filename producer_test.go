package rx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJustProducesOneValueThenCompletes(t *testing.T) {
	var got []int
	completed := false
	Just[int, string](42).Start(NewObserverWithCallbacks[int, string](
		func(v int) { got = append(got, v) },
		nil,
		func() { completed = true },
		nil,
	))
	assert.Equal(t, []int{42}, got)
	assert.True(t, completed)
}

func TestFailProducesFailureImmediately(t *testing.T) {
	var got string
	Fail[int, string]("boom").StartWithFailed(func(e string) { got = e })
	assert.Equal(t, "boom", got)
}

func TestFromValuesProducesAllThenCompletes(t *testing.T) {
	var got []int
	completed := false
	FromValues[int, string](1, 2, 3).Start(NewObserverWithCallbacks[int, string](
		func(v int) { got = append(got, v) }, nil, func() { completed = true }, nil,
	))
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.True(t, completed)
}

func TestStartIsColdAndRestartable(t *testing.T) {
	starts := 0
	p := NewSignalProducer(func(o *Observer[int, string], _ Lifetime) {
		starts++
		o.SendValue(starts)
		o.SendCompleted()
	})
	assert.Equal(t, 0, starts)

	var first, second int
	p.StartWithValues(func(v int) { first = v })
	p.StartWithValues(func(v int) { second = v })
	assert.Equal(t, 2, starts)
	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestDisposingStartInterruptsInFlightProducer(t *testing.T) {
	p := NewSignalProducer(func(o *Observer[int, string], lt Lifetime) {
		lt.AddDisposable(NewActionDisposable(func() {}))
		// never sends a terminal on its own — relies on external cancellation
	})
	interrupted := false
	d := p.Start(NewObserverWithCallbacks[int, string](nil, nil, nil, func() { interrupted = true }))
	assert.False(t, interrupted)
	d.Dispose()
	assert.True(t, interrupted)
}

func TestMapProducer(t *testing.T) {
	var got []string
	MapProducer(FromValues[int, string](1, 2), func(v int) string {
		if v == 1 {
			return "one"
		}
		return "two"
	}).StartWithValues(func(v string) { got = append(got, v) })
	assert.Equal(t, []string{"one", "two"}, got)
}

func TestTimesRepeatsAndCompletesAfterN(t *testing.T) {
	runs := 0
	p := NewSignalProducer(func(o *Observer[int, string], _ Lifetime) {
		runs++
		o.SendValue(runs)
		o.SendCompleted()
	})
	var got []int
	completed := false
	Times(p, 3).Start(NewObserverWithCallbacks[int, string](
		func(v int) { got = append(got, v) }, nil, func() { completed = true }, nil,
	))
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.True(t, completed)
}

func TestRetryExhaustsAttemptsThenForwardsFailure(t *testing.T) {
	attempts := 0
	p := NewSignalProducer(func(o *Observer[int, string], _ Lifetime) {
		attempts++
		o.SendFailed("nope")
	})
	var failedWith string
	Retry(p, 2).StartWithFailed(func(e string) { failedWith = e })
	assert.Equal(t, 3, attempts) // initial + 2 retries
	assert.Equal(t, "nope", failedWith)
}

func TestThenRunsNextAfterCompletion(t *testing.T) {
	var order []string
	first := NewSignalProducer(func(o *Observer[int, string], _ Lifetime) {
		order = append(order, "first")
		o.SendCompleted()
	})
	second := NewSignalProducer(func(o *Observer[string, string], _ Lifetime) {
		order = append(order, "second")
		o.SendValue("done")
		o.SendCompleted()
	})
	var got string
	Then(first, second).StartWithValues(func(v string) { got = v })
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, "done", got)
}

func TestReplayLazilyStartsUnderlyingOnceAndReplaysBuffer(t *testing.T) {
	starts := 0
	p := NewSignalProducer(func(o *Observer[int, string], _ Lifetime) {
		starts++
		o.SendValue(1)
		o.SendValue(2)
	})
	replayed := ReplayLazily(p, 0)

	var firstSeen, secondSeen []int
	replayed.StartWithValues(func(v int) { firstSeen = append(firstSeen, v) })
	replayed.StartWithValues(func(v int) { secondSeen = append(secondSeen, v) })

	assert.Equal(t, 1, starts)
	assert.Equal(t, []int{1, 2}, firstSeen)
	assert.Equal(t, []int{1, 2}, secondSeen)
}

func TestFlatMapConcatRunsInnerProducersInOrder(t *testing.T) {
	outer := FromValues[int, string](1, 2, 3)
	var got []int
	FlatMapConcat(outer, func(v int) *SignalProducer[int, string] {
		return Just[int, string](v * 10)
	}).StartWithValues(func(v int) { got = append(got, v) })
	assert.Equal(t, []int{10, 20, 30}, got)
}

func TestFlatMapMergeForwardsAllValues(t *testing.T) {
	outer := FromValues[int, string](1, 2, 3)
	var got []int
	done := make(chan struct{})
	FlatMapMerge(outer, func(v int) *SignalProducer[int, string] {
		return Just[int, string](v * 10)
	}).Start(NewObserverWithCallbacks[int, string](
		func(v int) { got = append(got, v) }, nil, func() { close(done) }, nil,
	))
	<-done
	assert.ElementsMatch(t, []int{10, 20, 30}, got)
}

func TestFlatMapLatestCancelsPreviousInner(t *testing.T) {
	outerSignal, outerInput, outerInterrupt := Pipe[int, string]()
	defer outerInterrupt.Dispose()
	outer := NewSignalProducer(func(o *Observer[int, string], lt Lifetime) {
		lt.AddDisposable(outerSignal.Observe(o))
	})

	firstDisposed := false
	var got []int
	FlatMapLatest(outer, func(v int) *SignalProducer[int, string] {
		if v == 1 {
			return NewSignalProducer(func(o *Observer[int, string], lt Lifetime) {
				lt.AddDisposable(NewActionDisposable(func() { firstDisposed = true }))
			})
		}
		return Just[int, string](v)
	}).Start(NewObserverWithCallbacks[int, string](func(v int) { got = append(got, v) }, nil, nil, nil))

	outerInput.SendValue(1)
	require.False(t, firstDisposed)
	outerInput.SendValue(2)
	assert.True(t, firstDisposed)
	assert.Equal(t, []int{2}, got)
}

func TestFlatMapRaceKeepsOnlyFirstWinner(t *testing.T) {
	outer := FromValues[int, string](1, 2, 3)
	var got []int
	FlatMapRace(outer, func(v int) *SignalProducer[int, string] {
		return Just[int, string](v)
	}).StartWithValues(func(v int) { got = append(got, v) })
	assert.Equal(t, []int{1}, got)
}

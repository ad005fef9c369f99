package rx

import (
	"sync"
	"time"
)

// Pair is the value type produced by the two-source combining operators.
type Pair[A, B any] struct {
	First  A
	Second B
}

// ZipSignal buffers each side and emits paired values in arrival order.
// It completes as soon as either side has completed and its own buffer
// is drained (any leftover on the other side is discarded); it fails or
// interrupts on the first such terminal from either side.
func ZipSignal[A, B, E any](sa *Signal[A, E], sb *Signal[B, E]) *Signal[Pair[A, B], E] {
	return NewSignal(func(down *Observer[Pair[A, B], E]) Disposable {
		var mu sync.Mutex
		var bufA []A
		var bufB []B
		doneA, doneB, finished := false, false, false

		drain := func() {
			for len(bufA) > 0 && len(bufB) > 0 {
				av, bv := bufA[0], bufB[0]
				bufA, bufB = bufA[1:], bufB[1:]
				down.SendValue(Pair[A, B]{av, bv})
			}
			if !finished && ((doneA && len(bufA) == 0) || (doneB && len(bufB) == 0)) {
				finished = true
				down.SendCompleted()
			}
		}

		comp := NewCompositeDisposable(nil)
		comp.Add(sa.Observe(NewObserver(func(e Event[A, E]) {
			mu.Lock()
			defer mu.Unlock()
			if finished {
				return
			}
			switch {
			case e.IsValue():
				v, _ := e.Value()
				bufA = append(bufA, v)
				drain()
			case e.IsCompleted():
				doneA = true
				drain()
			case e.IsFailed():
				finished = true
				err, _ := e.Err()
				down.SendFailed(err)
			case e.IsInterrupted():
				finished = true
				down.SendInterrupted()
			}
		})))
		comp.Add(sb.Observe(NewObserver(func(e Event[B, E]) {
			mu.Lock()
			defer mu.Unlock()
			if finished {
				return
			}
			switch {
			case e.IsValue():
				v, _ := e.Value()
				bufB = append(bufB, v)
				drain()
			case e.IsCompleted():
				doneB = true
				drain()
			case e.IsFailed():
				finished = true
				err, _ := e.Err()
				down.SendFailed(err)
			case e.IsInterrupted():
				finished = true
				down.SendInterrupted()
			}
		})))
		return comp
	})
}

// CombineLatestSignal emits (latestA, latestB) once both sides have
// emitted at least once, and again on every subsequent change from
// either side. Terminal rules mirror ZipSignal's.
func CombineLatestSignal[A, B, E any](sa *Signal[A, E], sb *Signal[B, E]) *Signal[Pair[A, B], E] {
	return NewSignal(func(down *Observer[Pair[A, B], E]) Disposable {
		var mu sync.Mutex
		var curA A
		var curB B
		hasA, hasB, finished := false, false, false

		tryEmit := func() {
			if hasA && hasB {
				down.SendValue(Pair[A, B]{curA, curB})
			}
		}
		checkComplete := func() {
			if !finished {
				finished = true
				down.SendCompleted()
			}
		}

		comp := NewCompositeDisposable(nil)
		comp.Add(sa.Observe(NewObserver(func(e Event[A, E]) {
			mu.Lock()
			defer mu.Unlock()
			if finished {
				return
			}
			switch {
			case e.IsValue():
				v, _ := e.Value()
				curA, hasA = v, true
				tryEmit()
			case e.IsCompleted():
				checkComplete()
			case e.IsFailed():
				finished = true
				err, _ := e.Err()
				down.SendFailed(err)
			case e.IsInterrupted():
				finished = true
				down.SendInterrupted()
			}
		})))
		comp.Add(sb.Observe(NewObserver(func(e Event[B, E]) {
			mu.Lock()
			defer mu.Unlock()
			if finished {
				return
			}
			switch {
			case e.IsValue():
				v, _ := e.Value()
				curB, hasB = v, true
				tryEmit()
			case e.IsCompleted():
				checkComplete()
			case e.IsFailed():
				finished = true
				err, _ := e.Err()
				down.SendFailed(err)
			case e.IsInterrupted():
				finished = true
				down.SendInterrupted()
			}
		})))
		return comp
	})
}

// MergeSignal forwards every value event from every source in arrival
// order, completing only once all sources have completed; the first
// failure or interruption from any source terminates the merge.
func MergeSignal[V, E any](sources ...*Signal[V, E]) *Signal[V, E] {
	return NewSignal(func(down *Observer[V, E]) Disposable {
		comp := NewCompositeDisposable(nil)
		if len(sources) == 0 {
			down.SendCompleted()
			return comp
		}
		var mu sync.Mutex
		remaining := len(sources)
		finished := false
		for _, src := range sources {
			comp.Add(src.Observe(NewObserver(func(e Event[V, E]) {
				mu.Lock()
				defer mu.Unlock()
				if finished {
					return
				}
				switch {
				case e.IsValue():
					down.Send(e)
				case e.IsCompleted():
					remaining--
					if remaining == 0 {
						finished = true
						down.SendCompleted()
					}
				case e.IsFailed(), e.IsInterrupted():
					finished = true
					down.Send(e)
				}
			})))
		}
		return comp
	})
}

// SampleSignal emits source's current value every time trigger emits,
// once source has emitted at least once. trigger's own terminal events
// are ignored; only source drives sample's termination.
func SampleSignal[V, T, E any](source *Signal[V, E], trigger *Signal[T, E]) *Signal[V, E] {
	return NewSignal(func(down *Observer[V, E]) Disposable {
		var mu sync.Mutex
		var cur V
		hasValue, finished := false, false

		comp := NewCompositeDisposable(nil)
		comp.Add(source.Observe(NewObserver(func(e Event[V, E]) {
			mu.Lock()
			defer mu.Unlock()
			if finished {
				return
			}
			switch {
			case e.IsValue():
				v, _ := e.Value()
				cur, hasValue = v, true
			case e.IsCompleted():
				finished = true
				down.SendCompleted()
			case e.IsFailed():
				finished = true
				err, _ := e.Err()
				down.SendFailed(err)
			case e.IsInterrupted():
				finished = true
				down.SendInterrupted()
			}
		})))
		comp.Add(trigger.Observe(NewObserver(func(e Event[T, E]) {
			mu.Lock()
			if finished || !e.IsValue() {
				mu.Unlock()
				return
			}
			if !hasValue {
				mu.Unlock()
				return
			}
			v := cur
			mu.Unlock()
			down.SendValue(v)
		})))
		return comp
	})
}

// WithLatestSignal emits (sourceValue, latestOther) every time source
// emits, once other has emitted at least once; other's terminal events
// are ignored and only source drives termination.
func WithLatestSignal[V, O, E any](source *Signal[V, E], other *Signal[O, E]) *Signal[Pair[V, O], E] {
	return NewSignal(func(down *Observer[Pair[V, O], E]) Disposable {
		var mu sync.Mutex
		var curO O
		hasOther, finished := false, false

		comp := NewCompositeDisposable(nil)
		comp.Add(other.Observe(NewObserver(func(e Event[O, E]) {
			mu.Lock()
			defer mu.Unlock()
			if finished {
				return
			}
			if v, ok := e.Value(); ok {
				curO, hasOther = v, true
			}
		})))
		comp.Add(source.Observe(NewObserver(func(e Event[V, E]) {
			mu.Lock()
			if finished {
				mu.Unlock()
				return
			}
			switch {
			case e.IsValue():
				v, _ := e.Value()
				if !hasOther {
					mu.Unlock()
					return
				}
				o := curO
				mu.Unlock()
				down.SendValue(Pair[V, O]{v, o})
			case e.IsCompleted():
				finished = true
				mu.Unlock()
				down.SendCompleted()
			case e.IsFailed():
				finished = true
				err, _ := e.Err()
				mu.Unlock()
				down.SendFailed(err)
			case e.IsInterrupted():
				finished = true
				mu.Unlock()
				down.SendInterrupted()
			default:
				mu.Unlock()
			}
		})))
		return comp
	})
}

// DebounceSignal re-arms a timer on every value and forwards only the
// last value once interval has elapsed without another one arriving.
func DebounceSignal[V, E any](source *Signal[V, E], interval time.Duration, sched Scheduler) *Signal[V, E] {
	return NewSignal(func(down *Observer[V, E]) Disposable {
		pending := NewSerialDisposable()
		comp := NewCompositeDisposable(nil)
		comp.Add(pending)
		comp.Add(source.Observe(NewObserver(func(e Event[V, E]) {
			if v, ok := e.Value(); ok {
				pending.Inner(sched.ScheduleAfter(time.Now().Add(interval), func() {
					down.SendValue(v)
				}))
				return
			}
			pending.Dispose()
			down.Send(e)
		})))
		return comp
	})
}

// ThrottleSignal forwards the leading value of a window immediately,
// drops every value arriving within interval of it, and — if at least
// one was dropped — forwards the most recent dropped value as a
// trailing emission once the window closes.
func ThrottleSignal[V, E any](source *Signal[V, E], interval time.Duration, sched Scheduler) *Signal[V, E] {
	return NewSignal(func(down *Observer[V, E]) Disposable {
		var mu sync.Mutex
		var pendingValue V
		hasPending, inWindow := false, false
		trailing := NewSerialDisposable()
		comp := NewCompositeDisposable(nil)
		comp.Add(trailing)

		var startWindow func()
		startWindow = func() {
			inWindow = true
			trailing.Inner(sched.ScheduleAfter(time.Now().Add(interval), func() {
				mu.Lock()
				if hasPending {
					v := pendingValue
					hasPending = false
					mu.Unlock()
					down.SendValue(v)
					mu.Lock()
					startWindow()
					mu.Unlock()
					return
				}
				inWindow = false
				mu.Unlock()
			}))
		}

		comp.Add(source.Observe(NewObserver(func(e Event[V, E]) {
			if v, ok := e.Value(); ok {
				mu.Lock()
				if !inWindow {
					mu.Unlock()
					down.SendValue(v)
					mu.Lock()
					startWindow()
					mu.Unlock()
					return
				}
				pendingValue, hasPending = v, true
				mu.Unlock()
				return
			}
			trailing.Dispose()
			down.Send(e)
		})))
		return comp
	})
}

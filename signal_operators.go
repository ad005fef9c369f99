package rx

import "sync"

// liftSignal builds a new Signal by subscribing to source and routing
// every event it sees through transform, which decides what (if
// anything) to forward downstream. Most signal-level operators in this
// file are expressed with it; TakeDuringSignal, ObserveOnSignal and
// TakeSignal's n <= 0 case build their signal with NewSignal directly.
//
// Every operator defined here is a free function, not a method: Go
// cannot give a method a type parameter beyond its receiver's, so any
// operator that changes V or E (Map, MapError, Materialize,
// Dematerialize) has no choice, and the same-type operators follow suit
// for a single consistent calling convention (§4.11).
func liftSignal[V, E, V2, E2 any](source *Signal[V, E], transform func(Event[V, E], *Observer[V2, E2])) *Signal[V2, E2] {
	return NewSignal(func(down *Observer[V2, E2]) Disposable {
		up := NewObserver(func(e Event[V, E]) { transform(e, down) })
		return source.Observe(up)
	})
}

// MapSignal transforms every value; terminals pass through unchanged.
func MapSignal[V, E, V2 any](source *Signal[V, E], f func(V) V2) *Signal[V2, E] {
	return liftSignal[V, E, V2, E](source, func(e Event[V, E], down *Observer[V2, E]) {
		down.Send(MapEvent(e, f))
	})
}

// MapErrorSignal transforms the failure type; values and the other two
// terminals pass through unchanged.
func MapErrorSignal[V, E, E2 any](source *Signal[V, E], f func(E) E2) *Signal[V, E2] {
	return liftSignal[V, E, V, E2](source, func(e Event[V, E], down *Observer[V, E2]) {
		down.Send(MapEventError(e, f))
	})
}

// FilterSignal forwards only values satisfying pred; terminals always
// pass through.
func FilterSignal[V, E any](source *Signal[V, E], pred func(V) bool) *Signal[V, E] {
	return liftSignal[V, E, V, E](source, func(e Event[V, E], down *Observer[V, E]) {
		if v, ok := e.Value(); ok && !pred(v) {
			return
		}
		down.Send(e)
	})
}

// MaterializeSignal turns every event — including the terminal — into a
// value on a signal that never itself fails, completing right after
// relaying the source's terminal as a value.
func MaterializeSignal[V, E any](source *Signal[V, E]) *Signal[Event[V, E], Never] {
	return liftSignal[V, E, Event[V, E], Never](source, func(e Event[V, E], down *Observer[Event[V, E], Never]) {
		down.SendValue(e)
		if e.IsTerminal() {
			down.SendCompleted()
		}
	})
}

// DematerializeSignal is MaterializeSignal's inverse: the value events
// it receives (each itself an Event[V,E]) are unwrapped and forwarded as
// the real event stream, round-tripping materialize/dematerialize to
// the identity on values and terminals.
func DematerializeSignal[V, E any](source *Signal[Event[V, E], Never]) *Signal[V, E] {
	return liftSignal[Event[V, E], Never, V, E](source, func(e Event[Event[V, E], Never], down *Observer[V, E]) {
		if inner, ok := e.Value(); ok {
			down.Send(inner)
		}
		// completed/failed/interrupted on the materialized wrapper itself
		// carries no information beyond "the wrapped terminal was already
		// relayed as a value" — nothing further to forward.
	})
}

// TakeSignal forwards at most n values, then completes — even if the
// source has more to give or fails afterward. For n <= 0 the returned
// signal has already completed when TakeSignal returns, so observers
// attached to it receive interrupted.
func TakeSignal[V, E any](source *Signal[V, E], n int) *Signal[V, E] {
	if n <= 0 {
		return NewSignal(func(o *Observer[V, E]) Disposable {
			o.SendCompleted()
			return nil
		})
	}
	var mu sync.Mutex
	count := 0
	return liftSignal[V, E, V, E](source, func(e Event[V, E], down *Observer[V, E]) {
		if v, ok := e.Value(); ok {
			mu.Lock()
			if count >= n {
				mu.Unlock()
				return
			}
			count++
			reached := count >= n
			mu.Unlock()
			down.SendValue(v)
			if reached {
				down.SendCompleted()
			}
			return
		}
		down.Send(e)
	})
}

// TakeDuringSignal forwards values until lt ends, then completes — per
// S4, this is completed, never interrupted, since the lifetime ending
// is an ordinary boundary, not a cancellation.
func TakeDuringSignal[V, E any](source *Signal[V, E], lt Lifetime) *Signal[V, E] {
	return NewSignal(func(down *Observer[V, E]) Disposable {
		if lt.IsEnded() {
			down.SendCompleted()
			return nil
		}
		comp := NewCompositeDisposable(nil)
		up := NewObserver(func(e Event[V, E]) { down.Send(e) })
		comp.Add(source.Observe(up))
		comp.Add(lt.Ended.Observe(NewObserverWithCallbacks[struct{}, Never](
			nil, nil,
			func() { down.SendCompleted() },
			func() { down.SendCompleted() },
		)))
		return comp
	})
}

// SkipSignal drops the first n values, then forwards the rest as-is.
func SkipSignal[V, E any](source *Signal[V, E], n int) *Signal[V, E] {
	var mu sync.Mutex
	count := 0
	return liftSignal[V, E, V, E](source, func(e Event[V, E], down *Observer[V, E]) {
		if _, ok := e.Value(); ok {
			mu.Lock()
			if count < n {
				count++
				mu.Unlock()
				return
			}
			mu.Unlock()
		}
		down.Send(e)
	})
}

// SkipRepeatsSignal drops a value equal (per eq) to the last forwarded
// value.
func SkipRepeatsSignal[V, E any](source *Signal[V, E], eq func(a, b V) bool) *Signal[V, E] {
	var mu sync.Mutex
	var last V
	hasLast := false
	return liftSignal[V, E, V, E](source, func(e Event[V, E], down *Observer[V, E]) {
		if v, ok := e.Value(); ok {
			mu.Lock()
			if hasLast && eq(last, v) {
				mu.Unlock()
				return
			}
			last, hasLast = v, true
			mu.Unlock()
		}
		down.Send(e)
	})
}

// ObserveOnSignal re-dispatches every event through sched. Ordering
// within the signal is preserved because sched is serial per instance.
// The scheduled deliveries are held by the returned signal's generator
// disposable, which cancels any that have not yet run when the returned
// signal terminates; disposing one observer's subscription only detaches
// that observer.
func ObserveOnSignal[V, E any](source *Signal[V, E], sched Scheduler) *Signal[V, E] {
	return NewSignal(func(down *Observer[V, E]) Disposable {
		d := NewCompositeDisposable(nil)
		up := NewObserver(func(e Event[V, E]) {
			scheduled := sched.Schedule(func() { down.Send(e) })
			if scheduled != nil {
				d.Add(scheduled)
			}
		})
		d.Add(source.Observe(up))
		return d
	})
}

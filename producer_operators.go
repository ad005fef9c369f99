package rx

import "sync"

// Lift turns a Signal-level operator into a producer-level one: each
// Start of the resulting producer starts p fresh, applies op to the
// run's Signal, and observes the derived signal with the caller's
// observer — so every signal-level operator in this package gets a
// producer-level counterpart for free.
func Lift[V, E, V2, E2 any](p *SignalProducer[V, E], op func(*Signal[V, E]) *Signal[V2, E2]) *SignalProducer[V2, E2] {
	return NewSignalProducer(func(o *Observer[V2, E2], lt Lifetime) {
		d := p.StartWithSignal(func(s *Signal[V, E], comp *CompositeDisposable) {
			comp.Add(op(s).Observe(o))
		})
		lt.AddDisposable(d)
	})
}

// MapProducer is MapSignal lifted to SignalProducer.
func MapProducer[V, E, V2 any](p *SignalProducer[V, E], f func(V) V2) *SignalProducer[V2, E] {
	return Lift(p, func(s *Signal[V, E]) *Signal[V2, E] { return MapSignal(s, f) })
}

// MapErrorProducer is MapErrorSignal lifted to SignalProducer.
func MapErrorProducer[V, E, E2 any](p *SignalProducer[V, E], f func(E) E2) *SignalProducer[V, E2] {
	return Lift(p, func(s *Signal[V, E]) *Signal[V, E2] { return MapErrorSignal(s, f) })
}

// FilterProducer is FilterSignal lifted to SignalProducer.
func FilterProducer[V, E any](p *SignalProducer[V, E], pred func(V) bool) *SignalProducer[V, E] {
	return Lift(p, func(s *Signal[V, E]) *Signal[V, E] { return FilterSignal(s, pred) })
}

// TakeProducer is TakeSignal lifted to SignalProducer.
func TakeProducer[V, E any](p *SignalProducer[V, E], n int) *SignalProducer[V, E] {
	return Lift(p, func(s *Signal[V, E]) *Signal[V, E] { return TakeSignal(s, n) })
}

// SkipProducer is SkipSignal lifted to SignalProducer.
func SkipProducer[V, E any](p *SignalProducer[V, E], n int) *SignalProducer[V, E] {
	return Lift(p, func(s *Signal[V, E]) *Signal[V, E] { return SkipSignal(s, n) })
}

// SkipRepeatsProducer is SkipRepeatsSignal lifted to SignalProducer.
func SkipRepeatsProducer[V, E any](p *SignalProducer[V, E], eq func(a, b V) bool) *SignalProducer[V, E] {
	return Lift(p, func(s *Signal[V, E]) *Signal[V, E] { return SkipRepeatsSignal(s, eq) })
}

// ObserveOnProducer is ObserveOnSignal lifted to SignalProducer.
func ObserveOnProducer[V, E any](p *SignalProducer[V, E], sched Scheduler) *SignalProducer[V, E] {
	return Lift(p, func(s *Signal[V, E]) *Signal[V, E] { return ObserveOnSignal(s, sched) })
}

// MaterializeProducer is MaterializeSignal lifted to SignalProducer.
func MaterializeProducer[V, E any](p *SignalProducer[V, E]) *SignalProducer[Event[V, E], Never] {
	return Lift(p, func(s *Signal[V, E]) *Signal[Event[V, E], Never] { return MaterializeSignal(s) })
}

// DematerializeProducer is DematerializeSignal lifted to SignalProducer.
func DematerializeProducer[V, E any](p *SignalProducer[Event[V, E], Never]) *SignalProducer[V, E] {
	return Lift(p, func(s *Signal[Event[V, E], Never]) *Signal[V, E] { return DematerializeSignal(s) })
}

// TakeDuringProducer is TakeDuringSignal lifted to SignalProducer.
func TakeDuringProducer[V, E any](p *SignalProducer[V, E], during Lifetime) *SignalProducer[V, E] {
	return Lift(p, func(s *Signal[V, E]) *Signal[V, E] { return TakeDuringSignal(s, during) })
}

// Times restarts p, forwarding every run's values, n times in sequence,
// completing only after the nth run completes. A failure or
// interruption from any run ends the whole chain immediately.
func Times[V, E any](p *SignalProducer[V, E], n int) *SignalProducer[V, E] {
	if n <= 0 {
		return EmptyProducer[V, E]()
	}
	return NewSignalProducer(func(o *Observer[V, E], lt Lifetime) {
		serial := NewSerialDisposable()
		lt.AddDisposable(serial)
		var runOnce func(remaining int)
		runOnce = func(remaining int) {
			inner := p.StartWithSignal(func(s *Signal[V, E], comp *CompositeDisposable) {
				comp.Add(s.Observe(NewObserver(func(e Event[V, E]) {
					switch {
					case e.IsValue():
						o.Send(e)
					case e.IsCompleted():
						if remaining <= 1 {
							o.SendCompleted()
							return
						}
						runOnce(remaining - 1)
					default:
						o.Send(e)
					}
				})))
			})
			serial.Inner(inner)
		}
		runOnce(n)
	})
}

// Retry restarts p up to n additional times after a failure (n+1
// attempts total), forwarding every attempt's values as they arrive and
// only forwarding a failure once retries are exhausted. Completion or
// interruption end the chain immediately.
func Retry[V, E any](p *SignalProducer[V, E], n int) *SignalProducer[V, E] {
	return NewSignalProducer(func(o *Observer[V, E], lt Lifetime) {
		serial := NewSerialDisposable()
		lt.AddDisposable(serial)
		var attempt func(remaining int)
		attempt = func(remaining int) {
			inner := p.StartWithSignal(func(s *Signal[V, E], comp *CompositeDisposable) {
				comp.Add(s.Observe(NewObserver(func(e Event[V, E]) {
					switch {
					case e.IsValue():
						o.Send(e)
					case e.IsFailed():
						if remaining <= 0 {
							o.Send(e)
							return
						}
						attempt(remaining - 1)
					default:
						o.Send(e)
					}
				})))
			})
			serial.Inner(inner)
		}
		attempt(n)
	})
}

// Then discards p's values, running next once p completes; a failure or
// interruption from p is forwarded instead of starting next.
func Then[V, E, V2 any](p *SignalProducer[V, E], next *SignalProducer[V2, E]) *SignalProducer[V2, E] {
	return NewSignalProducer(func(o *Observer[V2, E], lt Lifetime) {
		d := p.StartWithSignal(func(s *Signal[V, E], comp *CompositeDisposable) {
			comp.Add(s.Observe(NewObserver(func(e Event[V, E]) {
				switch {
				case e.IsCompleted():
					lt.AddDisposable(next.Start(o))
				case e.IsFailed():
					err, _ := e.Err()
					o.SendFailed(err)
				case e.IsInterrupted():
					o.SendInterrupted()
				}
			})))
		})
		lt.AddDisposable(d)
	})
}

// ReplayLazily wraps p so the underlying producer is started at most
// once, on the first Start of the result, and every subsequent Start
// (including ones racing the first) replays the last capacity values
// seen so far before joining the live underlying run. capacity <= 0
// means unbounded buffering.
func ReplayLazily[V, E any](p *SignalProducer[V, E], capacity int) *SignalProducer[V, E] {
	var once sync.Once
	var mu sync.Mutex
	var buffer []V
	var terminal *Event[V, E]
	var underlying *Signal[V, E]

	// once.Do, not a plain mutex held across the StartWithSignal call: p
	// can send synchronously, and its observer (registered inside the
	// same call) needs mu free to record what it sent — holding mu for
	// the whole call would have that observer deadlock against itself.
	ensureStarted := func() *Signal[V, E] {
		once.Do(func() {
			p.StartWithSignal(func(s *Signal[V, E], comp *CompositeDisposable) {
				mu.Lock()
				underlying = s
				mu.Unlock()
				comp.Add(s.Observe(NewObserver(func(e Event[V, E]) {
					mu.Lock()
					defer mu.Unlock()
					if v, ok := e.Value(); ok {
						buffer = append(buffer, v)
						if capacity > 0 && len(buffer) > capacity {
							buffer = buffer[len(buffer)-capacity:]
						}
						return
					}
					t := e
					terminal = &t
				})))
			})
		})
		mu.Lock()
		defer mu.Unlock()
		return underlying
	}

	return NewSignalProducer(func(o *Observer[V, E], lt Lifetime) {
		s := ensureStarted()
		mu.Lock()
		snapshot := append([]V(nil), buffer...)
		t := terminal
		mu.Unlock()
		for _, v := range snapshot {
			o.SendValue(v)
		}
		if t != nil {
			o.Send(*t)
			return
		}
		if s != nil {
			lt.AddDisposable(s.Observe(o))
		}
	})
}

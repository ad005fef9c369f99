package rx

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// errFlatMapMergeInnerFailed is returned from an inner's tracking
// goroutine to errgroup.Group so the group's context is cancelled; the
// error itself is never surfaced to the caller (the real failure event
// is already forwarded via terminate), it only drives cancellation.
var errFlatMapMergeInnerFailed = errors.New("rx: flatMap(merge) inner producer failed")

// FlatMapMerge maps each outer value to an inner producer and runs every
// inner producer concurrently, forwarding all of their values as they
// arrive. It completes once the outer producer and every inner producer
// it spawned have completed; the first failure or interruption from
// either the outer producer or any inner producer ends the whole chain.
//
// Fan-in bookkeeping is handed to an errgroup.Group built with
// WithContext: each inner's tracking goroutine returns the inner's
// error (if any) to the group, and the group's derived context is what
// actually cancels every other still-running inner once one of them
// fails — not the hand-rolled completion counters, which only decide
// when to emit the final completed.
func FlatMapMerge[V, E, V2 any](p *SignalProducer[V, E], f func(V) *SignalProducer[V2, E]) *SignalProducer[V2, E] {
	return NewSignalProducer(func(o *Observer[V2, E], lt Lifetime) {
		var q serialQueue
		eg, ctx := errgroup.WithContext(context.Background())
		active := NewCompositeDisposable(nil)
		lt.AddDisposable(active)
		outerDone, finished := false, false
		remaining := 0

		terminate := func(e Event[V2, E]) {
			if finished {
				return
			}
			finished = true
			o.Send(e)
		}
		finishIfDone := func() {
			if !finished && outerDone && remaining == 0 {
				finished = true
				o.SendCompleted()
			}
		}

		// The group's context is cancelled the instant any inner
		// goroutine returns errFlatMapMergeInnerFailed; disposing
		// active tears down every still-running inner in response.
		go func() {
			<-ctx.Done()
			active.Dispose()
		}()

		d := p.StartWithSignal(func(s *Signal[V, E], comp *CompositeDisposable) {
			comp.Add(s.Observe(NewObserver(func(e Event[V, E]) {
				q.run(func() {
					if finished {
						return
					}
					switch {
					case e.IsValue():
						v, _ := e.Value()
						inner := f(v)
						remaining++
						done := make(chan error, 1)
						innerDisp := inner.StartWithSignal(func(is *Signal[V2, E], icomp *CompositeDisposable) {
							icomp.Add(is.Observe(NewObserver(func(ie Event[V2, E]) {
								q.run(func() {
									if finished {
										return
									}
									switch {
									case ie.IsValue():
										o.Send(ie)
									case ie.IsCompleted():
										remaining--
										finishIfDone()
										done <- nil
									case ie.IsFailed(), ie.IsInterrupted():
										terminate(ie)
										done <- errFlatMapMergeInnerFailed
									}
								})
							})))
						})
						active.Add(innerDisp)
						eg.Go(func() error {
							select {
							case err := <-done:
								return err
							case <-ctx.Done():
								return nil
							}
						})
					case e.IsCompleted():
						outerDone = true
						finishIfDone()
					case e.IsFailed(), e.IsInterrupted():
						terminate(MapEvent(e, func(V) V2 { var zero V2; return zero }))
					}
				})
			})))
		})
		lt.AddDisposable(d)
		go func() { _ = eg.Wait() }()
	})
}

// FlatMapConcat maps each outer value to an inner producer and runs
// them one at a time in arrival order, queuing outer values that arrive
// while an inner producer is still running. It completes once the
// outer producer and every queued inner producer have completed; a
// failure or interruption from the outer producer or the running inner
// producer ends the chain immediately, discarding the queue.
func FlatMapConcat[V, E, V2 any](p *SignalProducer[V, E], f func(V) *SignalProducer[V2, E]) *SignalProducer[V2, E] {
	return NewSignalProducer(func(o *Observer[V2, E], lt Lifetime) {
		var q serialQueue
		var queue []V
		running, outerDone, finished := false, false, false
		serial := NewSerialDisposable()
		lt.AddDisposable(serial)

		terminate := func(e Event[V2, E]) {
			if finished {
				return
			}
			finished = true
			o.Send(e)
		}
		finishIfDone := func() {
			if !finished && outerDone && !running && len(queue) == 0 {
				finished = true
				o.SendCompleted()
			}
		}

		var startNext func()
		startNext = func() {
			if running || len(queue) == 0 {
				finishIfDone()
				return
			}
			v := queue[0]
			queue = queue[1:]
			running = true
			inner := f(v)
			d := inner.StartWithSignal(func(is *Signal[V2, E], icomp *CompositeDisposable) {
				icomp.Add(is.Observe(NewObserver(func(ie Event[V2, E]) {
					q.run(func() {
						if finished {
							return
						}
						switch {
						case ie.IsValue():
							o.Send(ie)
						case ie.IsCompleted():
							running = false
							startNext()
						case ie.IsFailed(), ie.IsInterrupted():
							terminate(ie)
						}
					})
				})))
			})
			serial.Inner(d)
		}

		d := p.StartWithSignal(func(s *Signal[V, E], comp *CompositeDisposable) {
			comp.Add(s.Observe(NewObserver(func(e Event[V, E]) {
				q.run(func() {
					if finished {
						return
					}
					switch {
					case e.IsValue():
						v, _ := e.Value()
						queue = append(queue, v)
						startNext()
					case e.IsCompleted():
						outerDone = true
						finishIfDone()
					case e.IsFailed(), e.IsInterrupted():
						terminate(MapEvent(e, func(V) V2 { var zero V2; return zero }))
					}
				})
			})))
		})
		lt.AddDisposable(d)
	})
}

// FlatMapLatest maps each outer value to an inner producer, keeping at
// most one inner producer running at a time: a new outer value cancels
// whatever inner producer is currently running before starting its
// replacement. It completes once the outer producer has completed and
// the last inner producer it started has completed.
func FlatMapLatest[V, E, V2 any](p *SignalProducer[V, E], f func(V) *SignalProducer[V2, E]) *SignalProducer[V2, E] {
	return NewSignalProducer(func(o *Observer[V2, E], lt Lifetime) {
		var q serialQueue
		current := NewSerialDisposable()
		lt.AddDisposable(current)
		outerDone, innerActive, finished := false, false, false
		gen := 0 // identifies the current inner; events from replaced ones are ignored

		terminate := func(e Event[V2, E]) {
			if finished {
				return
			}
			finished = true
			o.Send(e)
		}
		finishIfDone := func() {
			if !finished && outerDone && !innerActive {
				finished = true
				o.SendCompleted()
			}
		}

		d := p.StartWithSignal(func(s *Signal[V, E], comp *CompositeDisposable) {
			comp.Add(s.Observe(NewObserver(func(e Event[V, E]) {
				q.run(func() {
					if finished {
						return
					}
					switch {
					case e.IsValue():
						v, _ := e.Value()
						inner := f(v)
						current.Inner(nil)
						gen++
						myGen := gen
						innerActive = true
						id := inner.StartWithSignal(func(is *Signal[V2, E], icomp *CompositeDisposable) {
							icomp.Add(is.Observe(NewObserver(func(ie Event[V2, E]) {
								q.run(func() {
									if finished || myGen != gen {
										return
									}
									switch {
									case ie.IsValue():
										o.Send(ie)
									case ie.IsCompleted():
										innerActive = false
										finishIfDone()
									case ie.IsFailed(), ie.IsInterrupted():
										terminate(ie)
									}
								})
							})))
						})
						current.Inner(id)
					case e.IsCompleted():
						outerDone = true
						finishIfDone()
					case e.IsFailed(), e.IsInterrupted():
						terminate(MapEvent(e, func(V) V2 { var zero V2; return zero }))
					}
				})
			})))
		})
		lt.AddDisposable(d)
	})
}

// FlatMapRace starts a fresh inner producer, concurrently, for every
// outer value — the first inner to emit a value wins the race, and
// every other still-running inner (including ones started from later
// outer values that arrive before a winner is decided) is disposed at
// that instant. Only the winner's events are forwarded from then on, and
// later outer values are ignored; an inner that reaches a terminal
// without ever emitting a value loses without being declared the
// winner. Once a winner exists, the chain completes when the winner
// completes, whether or not the outer producer has completed; before
// that, it completes once the outer producer has completed and every
// started inner has terminated without emitting a value.
func FlatMapRace[V, E, V2 any](p *SignalProducer[V, E], f func(V) *SignalProducer[V2, E]) *SignalProducer[V2, E] {
	return NewSignalProducer(func(o *Observer[V2, E], lt Lifetime) {
		var q serialQueue
		all := NewCompositeDisposable(nil)
		lt.AddDisposable(all)
		pending := make(map[int]Disposable)
		nextID := 0
		winnerPicked := false
		winningID := -1
		outerDone, finished := false, false
		started, settled := 0, 0

		terminate := func(e Event[V2, E]) {
			if finished {
				return
			}
			finished = true
			o.Send(e)
		}
		finishIfDone := func() {
			if !finished && outerDone && started == settled {
				finished = true
				o.SendCompleted()
			}
		}
		// disposeLosers tears down every contender still racing except
		// the one that just won; called exactly once, right when a
		// winner is decided.
		disposeLosers := func() {
			for id, disp := range pending {
				if id != winningID {
					disp.Dispose()
				}
			}
			pending = make(map[int]Disposable)
		}

		d := p.StartWithSignal(func(s *Signal[V, E], comp *CompositeDisposable) {
			comp.Add(s.Observe(NewObserver(func(e Event[V, E]) {
				q.run(func() {
					if finished {
						return
					}
					switch {
					case e.IsValue():
						if winnerPicked {
							return
						}
						v, _ := e.Value()
						inner := f(v)
						id := nextID
						nextID++
						started++
						innerDisp := inner.StartWithSignal(func(is *Signal[V2, E], icomp *CompositeDisposable) {
							icomp.Add(is.Observe(NewObserver(func(ie Event[V2, E]) {
								q.run(func() {
									if finished {
										return
									}
									if !winnerPicked {
										if !ie.IsValue() {
											settled++
											delete(pending, id)
											finishIfDone()
											return
										}
										winnerPicked = true
										winningID = id
										disposeLosers()
									}
									if winningID != id {
										return
									}
									switch {
									case ie.IsValue():
										o.Send(ie)
									case ie.IsCompleted():
										finished = true
										o.SendCompleted()
									case ie.IsFailed(), ie.IsInterrupted():
										terminate(ie)
									}
								})
							})))
						})
						all.Add(innerDisp)
						if !winnerPicked {
							pending[id] = innerDisp
						}
					case e.IsCompleted():
						outerDone = true
						finishIfDone()
					case e.IsFailed(), e.IsInterrupted():
						terminate(MapEvent(e, func(V) V2 { var zero V2; return zero }))
					}
				})
			})))
		})
		lt.AddDisposable(d)
	})
}

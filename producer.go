package rx

// SignalProducer is a cold, restartable event stream: nothing happens
// until Start is called, and every call to Start gets its own freshly
// generated Signal, its own Lifetime, and its own CompositeDisposable.
//
// start receives the internal observer to drive and the Lifetime of
// this particular run; it should attach any resources it allocates
// (timers, connections, goroutines) to that Lifetime so they tear down
// exactly once, whether the run completes, fails, or is cancelled from
// outside.
type SignalProducer[V, E any] struct {
	start func(*Observer[V, E], Lifetime)
}

// NewSignalProducer builds a producer from a start function.
func NewSignalProducer[V, E any](start func(*Observer[V, E], Lifetime)) *SignalProducer[V, E] {
	return &SignalProducer[V, E]{start: start}
}

// newGeneratedSignal builds the Signal a producer run will drive, plus
// the internal observer that feeds it and a Disposable that, when
// disposed, sends interrupted on it from outside — the hook external
// cancellation uses to reach into an in-flight run. It does not invoke
// the producer's start function: the signal is constructed empty, with
// nothing yet attached to drive it, so the caller can attach observers
// before anything starts flowing.
func newGeneratedSignal[V, E any]() (*Signal[V, E], *Observer[V, E], Disposable) {
	var inner *Observer[V, E]
	s := NewSignal(func(o *Observer[V, E]) Disposable {
		inner = o
		return nil
	})
	interrupt := NewActionDisposable(func() { inner.SendInterrupted() })
	return s, inner, interrupt
}

// StartWithSignal runs the producer's five-step start contract — (1)
// allocate an interrupting CompositeDisposable D, (2) build a Lifetime
// tied to D, (3) build the run's Signal with its generator disposable
// attached to D, (4) hand the Signal and D to setup so it can attach
// whatever observation it wants, (5) only then invoke the start
// function — and is the mechanism every other Start variant, and every
// producer-level operator, is built on.
//
// The start function must not run until setup has attached the
// caller's observer: a producer that sends synchronously (Just,
// FromValues, a Property's initial value) would otherwise dispatch
// into a signal with no observers yet and those events would be lost.
func (p *SignalProducer[V, E]) StartWithSignal(setup func(*Signal[V, E], *CompositeDisposable)) Disposable {
	d := NewCompositeDisposable(nil)
	lt, token := NewLifetime()
	d.Add(NewActionDisposable(token.End))
	s, inner, interrupt := newGeneratedSignal[V, E]()
	d.Add(interrupt)
	setup(s, d)
	p.start(inner, lt)
	return d
}

// Start runs the producer, routing every event to o. The returned
// Disposable cancels the run: it ends the run's Lifetime, interrupts
// its Signal, and detaches o.
func (p *SignalProducer[V, E]) Start(o *Observer[V, E]) Disposable {
	return p.StartWithSignal(func(s *Signal[V, E], d *CompositeDisposable) {
		d.Add(s.Observe(o))
	})
}

// StartWithValues starts the producer, invoking onValue for each value
// and discarding terminals.
func (p *SignalProducer[V, E]) StartWithValues(onValue func(V)) Disposable {
	return p.Start(NewObserverWithCallbacks[V, E](onValue, nil, nil, nil))
}

// StartWithCompleted starts the producer, invoking onCompleted only if
// the run completes.
func (p *SignalProducer[V, E]) StartWithCompleted(onCompleted func()) Disposable {
	return p.Start(NewObserverWithCallbacks[V, E](nil, nil, onCompleted, nil))
}

// StartWithFailed starts the producer, invoking onFailed only if the
// run fails.
func (p *SignalProducer[V, E]) StartWithFailed(onFailed func(E)) Disposable {
	return p.Start(NewObserverWithCallbacks[V, E](nil, onFailed, nil, nil))
}

// StartWithResult starts the producer, invoking onValue for values and
// onFailed if the run fails.
func (p *SignalProducer[V, E]) StartWithResult(onValue func(V), onFailed func(E)) Disposable {
	return p.Start(NewObserverWithCallbacks[V, E](onValue, onFailed, nil, nil))
}

// Just produces a single value, then completes.
func Just[V, E any](v V) *SignalProducer[V, E] {
	return NewSignalProducer(func(o *Observer[V, E], _ Lifetime) {
		o.SendValue(v)
		o.SendCompleted()
	})
}

// Fail produces no values and fails immediately with err.
func Fail[V, E any](err E) *SignalProducer[V, E] {
	return NewSignalProducer(func(o *Observer[V, E], _ Lifetime) {
		o.SendFailed(err)
	})
}

// EmptyProducer produces no values and completes immediately.
func EmptyProducer[V, E any]() *SignalProducer[V, E] {
	return NewSignalProducer(func(o *Observer[V, E], _ Lifetime) {
		o.SendCompleted()
	})
}

// NeverProducer produces nothing and never terminates on its own.
func NeverProducer[V, E any]() *SignalProducer[V, E] {
	return NewSignalProducer(func(o *Observer[V, E], _ Lifetime) {})
}

// FromValues produces each value in order, then completes.
func FromValues[V, E any](values ...V) *SignalProducer[V, E] {
	return NewSignalProducer(func(o *Observer[V, E], _ Lifetime) {
		for _, v := range values {
			o.SendValue(v)
		}
		o.SendCompleted()
	})
}

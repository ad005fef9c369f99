package rx

import "sync/atomic"

// Observer is a sink accepting events; it owns a single send function.
// Calling Send after a terminal event has already been delivered is a
// no-op, not a fault — the send function itself is the single dispatch
// point, so it can be wrapped to filter, map or gate calls without the
// consumer noticing.
type Observer[V, E any] struct {
	send func(Event[V, E])
}

// NewObserver builds an Observer from a raw send function.
func NewObserver[V, E any](send func(Event[V, E])) *Observer[V, E] {
	if send == nil {
		return &Observer[V, E]{}
	}
	var terminated atomic.Bool
	return &Observer[V, E]{send: func(e Event[V, E]) {
		if terminated.Load() || (e.IsTerminal() && !terminated.CompareAndSwap(false, true)) {
			return
		}
		send(e)
	}}
}

// NewObserverWithCallbacks builds an Observer from per-variant callbacks;
// any nil callback is simply skipped for that variant.
func NewObserverWithCallbacks[V, E any](
	onValue func(V),
	onFailed func(E),
	onCompleted func(),
	onInterrupted func(),
) *Observer[V, E] {
	return NewObserver(func(e Event[V, E]) {
		switch {
		case e.IsValue():
			if onValue != nil {
				v, _ := e.Value()
				onValue(v)
			}
		case e.IsFailed():
			if onFailed != nil {
				err, _ := e.Err()
				onFailed(err)
			}
		case e.IsCompleted():
			if onCompleted != nil {
				onCompleted()
			}
		case e.IsInterrupted():
			if onInterrupted != nil {
				onInterrupted()
			}
		}
	})
}

// Send dispatches an event through the observer's send function.
func (o *Observer[V, E]) Send(e Event[V, E]) {
	if o == nil || o.send == nil {
		return
	}
	o.send(e)
}

// SendValue is shorthand for Send(ValueEvent(v)).
func (o *Observer[V, E]) SendValue(v V) { o.Send(ValueEvent[V, E](v)) }

// SendFailed is shorthand for Send(FailedEvent(err)).
func (o *Observer[V, E]) SendFailed(err E) { o.Send(FailedEvent[V, E](err)) }

// SendCompleted is shorthand for Send(CompletedEvent()).
func (o *Observer[V, E]) SendCompleted() { o.Send(CompletedEvent[V, E]()) }

// SendInterrupted is shorthand for Send(InterruptedEvent()).
func (o *Observer[V, E]) SendInterrupted() { o.Send(InterruptedEvent[V, E]()) }

package rx

// Pipe returns a manually-driven (Signal, Observer, interrupt
// Disposable) triple: sending to the observer drives the signal, and
// disposing the returned disposable sends interrupted.
func Pipe[V, E any]() (*Signal[V, E], *Observer[V, E], Disposable) {
	var inner *Observer[V, E]
	s := NewSignal(func(o *Observer[V, E]) Disposable {
		inner = o
		return nil
	})
	input := NewObserver(func(e Event[V, E]) { inner.Send(e) })
	interrupt := NewActionDisposable(func() { input.SendInterrupted() })
	return s, input, interrupt
}

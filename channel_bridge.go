package rx

// FromChannel builds a Signal that relays every value received from ch
// until ch is closed, at which point it completes. Disposing every
// observer's subscription before ch closes does not stop the drain
// goroutine — there is no portable way to ask a <-chan to stop being
// read from — so FromChannel is meant for channels whose producer side
// closes them on its own, not as a generic cancellation point.
func FromChannel[V, E any](ch <-chan V) *Signal[V, E] {
	return NewSignal(func(o *Observer[V, E]) Disposable {
		go func() {
			for v := range ch {
				o.SendValue(v)
			}
			o.SendCompleted()
		}()
		return nil
	})
}

// ToChannel subscribes to s and relays every value onto the returned
// channel, which is closed when s terminates. The returned Disposable
// detaches the subscription; if s has more to send afterward it is
// simply no longer observed, and the channel is closed at that point
// too so a consumer ranging over it isn't left blocked forever.
func ToChannel[V, E any](s *Signal[V, E]) (<-chan V, Disposable) {
	out := make(chan V)
	done := make(chan struct{})
	var closeOnce actionDisposable
	closeChan := func() {
		if closeOnce.disposed.CompareAndSwap(false, true) {
			close(out)
			close(done)
		}
	}
	sub := s.Observe(NewObserver(func(e Event[V, E]) {
		if v, ok := e.Value(); ok {
			select {
			case out <- v:
			case <-done:
			}
			return
		}
		closeChan()
	}))
	return out, NewActionDisposable(func() {
		if sub != nil {
			sub.Dispose()
		}
		closeChan()
	})
}

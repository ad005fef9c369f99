package rx

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
)

// Signal is a hot, multicast, push-based event stream with a
// single-terminal lifecycle: after the first terminal event (failed,
// completed or interrupted) it is terminated forever, and every
// subsequently attached observer immediately receives interrupted
// instead of the original terminal.
//
// The observer registry is an arena of stable uuid-keyed entries rather
// than raw back-pointers (per the design note on breaking the
// signal/observer ownership cycle): a mapset.Set of live ids plus a
// lookup table, so a per-subscription Disposable only ever needs to
// remember an id, never the observer itself.
type Signal[V, E any] struct {
	core *signalCore[V, E]
}

type signalCore[V, E any] struct {
	mu         sync.Mutex
	ids        mapset.Set[uuid.UUID]
	observers  map[uuid.UUID]*Observer[V, E]
	terminated bool

	generatorDisposable Disposable

	// send-slot trampoline: sending is true while a goroutine is
	// actively dispatching an event to observers; a Send call that
	// arrives while sending is true (including a reentrant nested send
	// from inside an observer callback) enqueues instead of recursing,
	// and the in-progress dispatcher drains the queue before returning.
	// This gives strict total order without a reentrant mutex.
	sending bool
	queue   []Event[V, E]
}

func newSignalCore[V, E any]() *signalCore[V, E] {
	return &signalCore[V, E]{
		ids:       mapset.NewSet[uuid.UUID](),
		observers: make(map[uuid.UUID]*Observer[V, E]),
	}
}

// NewSignal constructs a Signal from a generator that synchronously
// receives an internal observer and returns the generator's own
// disposable (or nil). The generator disposable is disposed exactly
// once, whenever the signal terminates — whether from a terminal event
// the generator itself sent, or from external interruption.
func NewSignal[V, E any](generator func(*Observer[V, E]) Disposable) *Signal[V, E] {
	s := &Signal[V, E]{core: newSignalCore[V, E]()}
	internal := NewObserver(func(e Event[V, E]) { s.core.send(e) })
	gd := generator(internal)

	s.core.mu.Lock()
	alreadyTerminated := s.core.terminated
	if !alreadyTerminated {
		s.core.generatorDisposable = gd
	}
	s.core.mu.Unlock()

	if alreadyTerminated && gd != nil {
		gd.Dispose()
	}
	return s
}

// Observe registers o. If the signal has already terminated, o
// synchronously receives exactly interrupted (never the original
// terminal) and nil is returned. Otherwise the returned Disposable
// removes o, and only o, when disposed.
func (s *Signal[V, E]) Observe(o *Observer[V, E]) Disposable {
	c := s.core
	c.mu.Lock()
	if c.terminated {
		c.mu.Unlock()
		o.Send(InterruptedEvent[V, E]())
		return nil
	}
	id := uuid.New()
	c.observers[id] = o
	c.ids.Add(id)
	c.mu.Unlock()
	return NewActionDisposable(func() {
		c.mu.Lock()
		// termination already cleared the registry (ids is nil then).
		if !c.terminated {
			delete(c.observers, id)
			c.ids.Remove(id)
		}
		c.mu.Unlock()
	})
}

// ObserveValues registers a callback invoked for every value event.
func (s *Signal[V, E]) ObserveValues(onValue func(V)) Disposable {
	return s.Observe(NewObserverWithCallbacks[V, E](onValue, nil, nil, nil))
}

// ObserveFailed registers a callback invoked if the signal fails.
func (s *Signal[V, E]) ObserveFailed(onFailed func(E)) Disposable {
	return s.Observe(NewObserverWithCallbacks[V, E](nil, onFailed, nil, nil))
}

// ObserveCompleted registers a callback invoked if the signal completes.
func (s *Signal[V, E]) ObserveCompleted(onCompleted func()) Disposable {
	return s.Observe(NewObserverWithCallbacks[V, E](nil, nil, onCompleted, nil))
}

// ObserveInterrupted registers a callback invoked if the signal is
// interrupted.
func (s *Signal[V, E]) ObserveInterrupted(onInterrupted func()) Disposable {
	return s.Observe(NewObserverWithCallbacks[V, E](nil, nil, nil, onInterrupted))
}

// ObserveResult registers callbacks for value and failed events only.
func (s *Signal[V, E]) ObserveResult(onValue func(V), onFailed func(E)) Disposable {
	return s.Observe(NewObserverWithCallbacks[V, E](onValue, onFailed, nil, nil))
}

// IsTerminated reports whether this signal has already delivered its
// one terminal event.
func (s *Signal[V, E]) IsTerminated() bool {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	return s.core.terminated
}

// send is the single dispatch point for every event flowing through
// this signal, internal or external.
func (c *signalCore[V, E]) send(e Event[V, E]) {
	c.mu.Lock()
	if c.terminated {
		c.mu.Unlock()
		return
	}
	if c.sending {
		c.queue = append(c.queue, e)
		c.mu.Unlock()
		return
	}
	c.sending = true
	c.mu.Unlock()

	c.dispatch(e)

	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			c.sending = false
			c.mu.Unlock()
			return
		}
		next := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()
		c.dispatch(next)
	}
}

// dispatch delivers one event to the current observer snapshot, and if
// it is terminal, transitions the core to terminated and tears down the
// generator disposable.
func (c *signalCore[V, E]) dispatch(e Event[V, E]) {
	if !e.IsTerminal() {
		c.mu.Lock()
		if c.terminated {
			c.mu.Unlock()
			return
		}
		snapshot := make([]*Observer[V, E], 0, len(c.observers))
		for _, o := range c.observers {
			snapshot = append(snapshot, o)
		}
		c.mu.Unlock()
		for _, o := range snapshot {
			o.Send(e)
		}
		return
	}

	c.mu.Lock()
	if c.terminated {
		c.mu.Unlock()
		return
	}
	c.terminated = true
	snapshot := make([]*Observer[V, E], 0, len(c.observers))
	for _, o := range c.observers {
		snapshot = append(snapshot, o)
	}
	c.observers = nil
	c.ids = nil
	gd := c.generatorDisposable
	c.generatorDisposable = nil
	c.mu.Unlock()

	for _, o := range snapshot {
		o.Send(e)
	}
	if gd != nil {
		gd.Dispose()
	}
}

package rx

// eventKind tags the four Event variants. value is non-terminal; the
// other three are terminal, and exactly one terminal may ever occur per
// signal lifetime.
type eventKind uint8

const (
	eventValue eventKind = iota
	eventFailed
	eventCompleted
	eventInterrupted
)

// Event is the tagged value delivered on a Signal: value(V), failed(E),
// completed, or interrupted.
type Event[V any, E any] struct {
	kind  eventKind
	value V
	err   E
}

// ValueEvent constructs a value(V) event.
func ValueEvent[V any, E any](v V) Event[V, E] {
	return Event[V, E]{kind: eventValue, value: v}
}

// FailedEvent constructs a failed(E) terminal event.
func FailedEvent[V any, E any](err E) Event[V, E] {
	return Event[V, E]{kind: eventFailed, err: err}
}

// CompletedEvent constructs a completed terminal event.
func CompletedEvent[V any, E any]() Event[V, E] {
	return Event[V, E]{kind: eventCompleted}
}

// InterruptedEvent constructs an interrupted terminal event.
func InterruptedEvent[V any, E any]() Event[V, E] {
	return Event[V, E]{kind: eventInterrupted}
}

func (e Event[V, E]) IsValue() bool       { return e.kind == eventValue }
func (e Event[V, E]) IsFailed() bool      { return e.kind == eventFailed }
func (e Event[V, E]) IsCompleted() bool   { return e.kind == eventCompleted }
func (e Event[V, E]) IsInterrupted() bool { return e.kind == eventInterrupted }

// IsTerminal reports whether this event ends the signal's lifetime.
func (e Event[V, E]) IsTerminal() bool { return e.kind != eventValue }

// Value returns the carried value and whether this is a value event.
func (e Event[V, E]) Value() (V, bool) { return e.value, e.kind == eventValue }

// Err returns the carried failure and whether this is a failed event.
func (e Event[V, E]) Err() (E, bool) { return e.err, e.kind == eventFailed }

// MapEvent transforms the value of a value event, leaving terminals
// untouched. A free function, not a method: Go methods cannot introduce
// a new type parameter (V2) beyond the receiver's own.
func MapEvent[V, V2, E any](e Event[V, E], f func(V) V2) Event[V2, E] {
	switch e.kind {
	case eventValue:
		return ValueEvent[V2, E](f(e.value))
	case eventFailed:
		return FailedEvent[V2, E](e.err)
	case eventCompleted:
		return CompletedEvent[V2, E]()
	default:
		return InterruptedEvent[V2, E]()
	}
}

// MapEventError transforms the failure of a failed event, leaving
// values and other terminals untouched.
func MapEventError[V, E, E2 any](e Event[V, E], f func(E) E2) Event[V, E2] {
	switch e.kind {
	case eventValue:
		return ValueEvent[V, E2](e.value)
	case eventFailed:
		return FailedEvent[V, E2](f(e.err))
	case eventCompleted:
		return CompletedEvent[V, E2]()
	default:
		return InterruptedEvent[V, E2]()
	}
}

package rx

import (
	"sync"
	"sync/atomic"
)

// Property is a read-only value cell with an observable change stream.
// Property values never fail — Never is baked into the error type — so
// a property can always be read synchronously via Value.
type Property[V any] struct {
	valueFn func() V
	changes *Signal[V, Never]
}

// NewProperty builds a Property from a value accessor and the signal of
// its changes. Used to expose a read-only view over a MutableProperty,
// or to build a derived property (MapProperty and friends).
func NewProperty[V any](valueFn func() V, changes *Signal[V, Never]) *Property[V] {
	return &Property[V]{valueFn: valueFn, changes: changes}
}

// Value returns the property's current value.
func (p *Property[V]) Value() V { return p.valueFn() }

// Signal returns the stream of this property's subsequent changes. It
// does not replay the current value.
func (p *Property[V]) Signal() *Signal[V, Never] { return p.changes }

// Producer returns a producer that, each time it is started, sends the
// property's value as of that moment followed by every subsequent
// change.
func (p *Property[V]) Producer() *SignalProducer[V, Never] {
	return NewSignalProducer(func(o *Observer[V, Never], lt Lifetime) {
		o.SendValue(p.valueFn())
		lt.AddDisposable(p.changes.Observe(o))
	})
}

// MutableProperty is a read-write value cell. Reads take a shared lock;
// writes go through Modify, which holds the cell's exclusive lock only
// for the duration of the transform function — the observer fan-out
// that follows happens outside the lock so an observer reacting to a
// change cannot deadlock against a concurrent reader.
//
// Modify is not reentrant: calling Modify (directly or via Set) from
// inside another Modify's transform or from one of this property's own
// change observers is a usage fault, not a silently-wrong recursive
// mutation.
type MutableProperty[V any] struct {
	mu      sync.RWMutex
	value   V
	inMod   atomic.Bool
	input   *Observer[V, Never]
	changes *Signal[V, Never]
}

// NewMutableProperty builds a mutable property seeded with initial.
func NewMutableProperty[V any](initial V) *MutableProperty[V] {
	var input *Observer[V, Never]
	changes := NewSignal(func(o *Observer[V, Never]) Disposable {
		input = o
		return nil
	})
	return &MutableProperty[V]{value: initial, input: input, changes: changes}
}

// Value returns the property's current value.
func (p *MutableProperty[V]) Value() V {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value
}

// Signal returns the stream of this property's subsequent changes.
func (p *MutableProperty[V]) Signal() *Signal[V, Never] { return p.changes }

// Modify replaces the current value with f applied to it, sends the new
// value on the change stream, and returns it. Panics with a
// *UsageFault if called reentrantly.
func (p *MutableProperty[V]) Modify(f func(V) V) V {
	if !p.inMod.CompareAndSwap(false, true) {
		panic(newRecursionFault("rx: reentrant MutableProperty.Modify"))
	}
	defer p.inMod.Store(false)

	p.mu.Lock()
	newVal := f(p.value)
	p.value = newVal
	p.mu.Unlock()

	p.input.SendValue(newVal)
	return newVal
}

// Set replaces the current value outright.
func (p *MutableProperty[V]) Set(v V) {
	p.Modify(func(V) V { return v })
}

// AsProperty returns a read-only view over this mutable property.
func (p *MutableProperty[V]) AsProperty() *Property[V] {
	return NewProperty(p.Value, p.changes)
}

// MapProperty derives a property whose value and changes are f applied
// to p's.
func MapProperty[V, V2 any](p *Property[V], f func(V) V2) *Property[V2] {
	return NewProperty(func() V2 { return f(p.Value()) }, MapSignal(p.Signal(), f))
}

// CombineLatestWith derives a property pairing pa and pb's latest
// values, updating whenever either changes.
func CombineLatestWith[A, B any](pa *Property[A], pb *Property[B]) *Property[Pair[A, B]] {
	return NewProperty(
		func() Pair[A, B] { return Pair[A, B]{pa.Value(), pb.Value()} },
		MergeSignal(
			MapSignal(pa.Signal(), func(a A) Pair[A, B] { return Pair[A, B]{a, pb.Value()} }),
			MapSignal(pb.Signal(), func(b B) Pair[A, B] { return Pair[A, B]{pa.Value(), b} }),
		),
	)
}

// ZipWith derives a property whose change stream pairs pa and pb's
// change events in arrival order (ZipSignal's usual buffering and
// early-completion rules apply to the change streams; the derived
// property's Value reads pa and pb's current values directly, not the
// zipped pairing, since a property always has a value to read and
// zip buffering has no well-defined "current" pair before both sides
// have changed at least once).
func ZipWith[A, B any](pa *Property[A], pb *Property[B]) *Property[Pair[A, B]] {
	return NewProperty(
		func() Pair[A, B] { return Pair[A, B]{pa.Value(), pb.Value()} },
		ZipSignal(pa.Signal(), pb.Signal()),
	)
}

// SkipRepeatsProperty derives a property whose change stream drops a
// change event equal (per eq) to the last value seen, starting from p's
// value at the time of derivation.
func SkipRepeatsProperty[V any](p *Property[V], eq func(a, b V) bool) *Property[V] {
	var mu sync.Mutex
	last := p.Value()
	return NewProperty(p.Value, FilterSignal(p.Signal(), func(v V) bool {
		mu.Lock()
		defer mu.Unlock()
		if eq(last, v) {
			return false
		}
		last = v
		return true
	}))
}

// BindSignal binds target to source: every value source emits is set on
// target. The returned Disposable tears down only this binding —
// disposing it does not affect source's other observers or target's
// other bindings.
func BindSignal[V any](target *MutableProperty[V], source *Signal[V, Never]) Disposable {
	return source.Observe(NewObserverWithCallbacks[V, Never](func(v V) { target.Set(v) }, nil, nil, nil))
}

// BindProducer starts source and binds target to its values; disposing
// the returned Disposable stops source and tears down only this
// binding.
func BindProducer[V any](target *MutableProperty[V], source *SignalProducer[V, Never]) Disposable {
	return source.StartWithValues(func(v V) { target.Set(v) })
}

// BindProperty sets target to source's current value immediately, then
// binds target to source's subsequent changes.
func BindProperty[V any](target *MutableProperty[V], source *Property[V]) Disposable {
	target.Set(source.Value())
	return BindSignal(target, source.Signal())
}

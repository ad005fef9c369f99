package rx

import (
	"runtime"
	"sync/atomic"
	"time"
)

// LifetimeToken holds the sole strong reference backing a Lifetime. Go
// has no deinit a library can rely on, so End is the deterministic,
// idiomatic-Go stand-in for "the token is dropped": call it explicitly
// when the scope ends. A finalizer is also registered as a GC-timed
// backstop for tokens that are simply discarded without an explicit End
// — belt and suspenders, not the primary mechanism.
type LifetimeToken struct {
	end func()
}

// End ends the lifetime, sending completed on its ended signal. Safe to
// call more than once or concurrently; only the first call has effect.
func (t *LifetimeToken) End() {
	if t.end != nil {
		t.end()
	}
}

// Lifetime is an observable scope with an ended signal.
type Lifetime struct {
	Ended *Signal[struct{}, Never]
}

// NewLifetime creates a fresh lifetime and the token that ends it.
func NewLifetime() (Lifetime, *LifetimeToken) {
	var input *Observer[struct{}, Never]
	ended := NewSignal(func(o *Observer[struct{}, Never]) Disposable {
		input = o
		return nil
	})
	endOnce := NewActionDisposable(func() { input.SendCompleted() })
	token := &LifetimeToken{end: endOnce.Dispose}
	runtime.SetFinalizer(token, func(t *LifetimeToken) { t.End() })
	return Lifetime{Ended: ended}, token
}

// AddDisposable disposes d when the lifetime ends. If the lifetime has
// already ended, d is disposed immediately.
func (l Lifetime) AddDisposable(d Disposable) {
	if d == nil {
		return
	}
	sub := l.Ended.Observe(NewObserverWithCallbacks[struct{}, Never](nil, nil, func() {
		d.Dispose()
	}, func() {
		d.Dispose()
	}))
	if sub == nil {
		// already terminated (ended, or collected without ever ending) — treat as ended.
		d.Dispose()
	}
}

// IsEnded reports whether the lifetime has already ended.
func (l Lifetime) IsEnded() bool {
	return l.Ended.IsTerminated()
}

// NewLifetimeFromDisposable builds a Lifetime that ends once d is
// disposed. Disposable has no native teardown hook in this runtime (only
// Dispose/IsDisposed), so absent a concrete type this runtime controls,
// the only portable way to notice termination is to poll — used only as
// a bridge at the edge of the system, never on the hot path.
func NewLifetimeFromDisposable(d Disposable) Lifetime {
	lt, token := NewLifetime()
	if d.IsDisposed() {
		token.End()
		return lt
	}
	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			if d.IsDisposed() {
				token.End()
				return
			}
		}
	}()
	return lt
}

// LifetimeAnd composes two lifetimes: the result ends as soon as either
// constituent ends.
func LifetimeAnd(a, b Lifetime) Lifetime {
	lt, token := NewLifetime()
	end := NewActionDisposable(token.End)
	a.AddDisposable(end)
	b.AddDisposable(end)
	return lt
}

// LifetimeOr composes two lifetimes: the result ends only once both
// constituents have ended.
func LifetimeOr(a, b Lifetime) Lifetime {
	lt, token := NewLifetime()
	var remaining atomic.Int32
	remaining.Store(2)
	done := func() {
		if remaining.Add(-1) <= 0 {
			token.End()
		}
	}
	a.AddDisposable(NewActionDisposable(done))
	b.AddDisposable(NewActionDisposable(done))
	return lt
}

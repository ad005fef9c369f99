// Package rx implements a push-based reactive-streams runtime: events,
// observers, hot multicast signals, cold signal producers, disposables,
// schedulers, lifetimes and properties, plus the operators that compose
// them.
//
// The nucleus is Signal (hot, multicast, terminates at most once) and
// SignalProducer (cold, restartable, materializes a fresh Signal per
// start). Everything else exists to make that pair safe to share across
// goroutines: Disposable for idempotent teardown, Scheduler for serial
// execution surfaces, Lifetime for scoped cancellation, and Property for
// a value cell with a change stream riding on top of a Signal.
package rx

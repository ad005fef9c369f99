package rx

import "time"

// Scheduler is a serial execution surface: schedule(work), plus delayed
// and repeating variants. Every implementation is serial per instance —
// work items scheduled on the same Scheduler never run concurrently
// with each other.
type Scheduler interface {
	// Schedule runs work on the scheduler's serial surface, returning a
	// Disposable that cancels it if disposed before it starts running.
	// May return nil when cancellation is meaningless (ImmediateScheduler).
	Schedule(work func()) Disposable

	// ScheduleAfter runs work once, no earlier than at.
	ScheduleAfter(at time.Time, work func()) Disposable

	// ScheduleAfterInterval runs work repeatedly starting at at, then
	// every interval thereafter, compensating for drift but never
	// firing overlapping ticks. leeway bounds how late the timer may
	// coalesce a tick (0 means no coalescing).
	ScheduleAfterInterval(at time.Time, interval, leeway time.Duration, work func()) Disposable
}

// immediateScheduler executes work synchronously on the calling
// goroutine and never returns a cancellable handle — by the time
// Schedule returns, work has already run.
type immediateScheduler struct{}

// ImmediateScheduler is the standard synchronous scheduler instance.
var ImmediateScheduler Scheduler = immediateScheduler{}

func (immediateScheduler) Schedule(work func()) Disposable {
	if work != nil {
		work()
	}
	return nil
}

func (immediateScheduler) ScheduleAfter(at time.Time, work func()) Disposable {
	panic(newUsageFault("rx: ImmediateScheduler does not support delayed scheduling — use a QueueScheduler"))
}

func (immediateScheduler) ScheduleAfterInterval(at time.Time, interval, leeway time.Duration, work func()) Disposable {
	panic(newUsageFault("rx: ImmediateScheduler does not support repeating scheduling — use a QueueScheduler"))
}

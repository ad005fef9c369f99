package rx

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
)

// queueTask is one unit of work enqueued on a QueueScheduler. cancelled
// is checked right before dispatch: a task disposed before it starts
// running must not run at all, but disposal has no effect once the body
// is already executing.
type queueTask struct {
	cancelled atomic.Bool
	fn        func()
}

// QueueScheduler is a serial FIFO executor backed by a single worker
// goroutine, plus a monotonic-clock timer for delayed and repeating
// work. Every Schedule* call on one instance is totally ordered with
// every other.
//
// label identifies the scheduler (the thread-affinity tag the spec's
// process-wide "main"/"UI" schedulers are built from); its xxhash is
// exposed so callers needing a stable, comparable identity for a
// scheduler (e.g. to detect same-scheduler reentrancy) don't have to
// compare the label string itself.
type QueueScheduler struct {
	label     string
	labelHash uint64
	tasks     chan *queueTask
	done      chan struct{}
	tornDown  atomic.Bool
}

// NewQueueScheduler starts a new serial queue-backed scheduler.
func NewQueueScheduler(label string) *QueueScheduler {
	s := &QueueScheduler{
		label:     label,
		labelHash: xxhash.Sum64String(label),
		tasks:     make(chan *queueTask, 256),
		done:      make(chan struct{}),
	}
	go s.run()
	return s
}

// MainScheduler is the process-wide "main" scheduler instance: a thin,
// always-available serial dispatcher. It is not torn down.
var MainScheduler = NewQueueScheduler("main")

func (s *QueueScheduler) Label() string     { return s.label }
func (s *QueueScheduler) LabelHash() uint64 { return s.labelHash }

func (s *QueueScheduler) isTornDown() bool { return s.tornDown.Load() }

// Teardown stops the worker goroutine. Scheduling on a torn-down
// scheduler is a fatal usage fault, not a stream failure.
func (s *QueueScheduler) Teardown() {
	if s.tornDown.CompareAndSwap(false, true) {
		close(s.done)
	}
}

func (s *QueueScheduler) run() {
	for {
		select {
		case t, ok := <-s.tasks:
			if !ok {
				return
			}
			if !t.cancelled.Load() && t.fn != nil {
				t.fn()
			}
		case <-s.done:
			return
		}
	}
}

func (s *QueueScheduler) teardownFault() *UsageFault {
	return newUsageFault(fmt.Sprintf("rx: QueueScheduler %q used after teardown", s.label))
}

// Schedule enqueues work and returns a Disposable that, if disposed
// before the worker goroutine reaches it, prevents it from running.
func (s *QueueScheduler) Schedule(work func()) Disposable {
	if s.isTornDown() {
		panic(s.teardownFault())
	}
	t := &queueTask{fn: work}
	select {
	case s.tasks <- t:
	case <-s.done:
		panic(s.teardownFault())
	}
	return NewActionDisposable(func() { t.cancelled.Store(true) })
}

// runBlocking enqueues fn and blocks until it has actually run (or the
// scheduler tore down first). Used by ScheduleAfterInterval so that a
// tick's work completes before the next tick's deadline is computed —
// the mechanism by which repeating schedules never overlap.
func (s *QueueScheduler) runBlocking(fn func()) {
	done := make(chan struct{})
	t := &queueTask{fn: func() { defer close(done); fn() }}
	select {
	case s.tasks <- t:
	case <-s.done:
		close(done)
		return
	}
	<-done
}

// ScheduleAfter runs work once, no earlier than at.
func (s *QueueScheduler) ScheduleAfter(at time.Time, work func()) Disposable {
	d := NewSerialDisposable()
	timer := time.AfterFunc(time.Until(at), func() {
		if d.IsDisposed() {
			return
		}
		d.Inner(s.Schedule(work))
	})
	d.Inner(NewActionDisposable(func() { timer.Stop() }))
	return d
}

// ScheduleAfterInterval runs work repeatedly, starting at at and
// thereafter every interval, computed from the fixed schedule rather
// than accumulated from "last fire + interval" so that slow ticks don't
// drift the whole series; leeway is how far past a boundary the next
// tick may be pushed before it's simply skipped forward to the next one.
func (s *QueueScheduler) ScheduleAfterInterval(at time.Time, interval, leeway time.Duration, work func()) Disposable {
	d := NewSerialDisposable()
	var tick func(next time.Time)
	tick = func(next time.Time) {
		timer := time.AfterFunc(time.Until(next), func() {
			if d.IsDisposed() {
				return
			}
			s.runBlocking(work)
			if d.IsDisposed() {
				return
			}
			nxt := next.Add(interval)
			now := time.Now()
			for !nxt.After(now.Add(-leeway)) {
				nxt = nxt.Add(interval)
			}
			tick(nxt)
		})
		d.Inner(NewActionDisposable(func() { timer.Stop() }))
	}
	tick(at)
	return d
}

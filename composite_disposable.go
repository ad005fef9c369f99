package rx

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// CompositeDisposable owns an ordered list of children; disposing it
// tears every child down exactly once, in the order they were added,
// and clears the list. A child added after the composite itself has
// been disposed is disposed immediately instead of being retained.
//
// Teardown order matters: SignalProducer.Start, for instance, relies
// on the run's interrupt hook tearing down before the caller's
// subscription is detached, so the caller's observer is still
// registered to receive the interrupted event a disposal triggers.
//
// Child teardown actions are user code and can panic; rather than let
// one bad child abort the rest of the teardown, every child's panic is
// recovered and folded into a github.com/hashicorp/go-multierror, which
// is then handed to panicHandler (or re-panicked if none was given).
type CompositeDisposable struct {
	mu           sync.Mutex
	disposed     bool
	children     []Disposable
	panicHandler func(error)
}

// NewCompositeDisposable creates an empty composite disposable.
// panicHandler, if non-nil, receives any child-teardown panics
// aggregated as a single error instead of having Dispose re-panic.
func NewCompositeDisposable(panicHandler func(error)) *CompositeDisposable {
	return &CompositeDisposable{panicHandler: panicHandler}
}

// Add registers a child disposable. If the composite is already
// disposed, d is disposed immediately instead of being retained.
func (c *CompositeDisposable) Add(d Disposable) {
	if d == nil {
		return
	}
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		d.Dispose()
		return
	}
	c.children = append(c.children, d)
	c.mu.Unlock()
}

// IsDisposed reports whether this composite has been disposed.
func (c *CompositeDisposable) IsDisposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

// Dispose tears down every retained child exactly once, in the order
// they were added, and clears the list. Safe to call concurrently and
// more than once.
func (c *CompositeDisposable) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	snapshot := c.children
	c.children = nil
	c.mu.Unlock()

	var merr *multierror.Error
	for _, child := range snapshot {
		func(d Disposable) {
			defer func() {
				if r := recover(); r != nil {
					merr = multierror.Append(merr, fmt.Errorf("disposing child panicked: %v", r))
				}
			}()
			d.Dispose()
		}(child)
	}
	if err := merr.ErrorOrNil(); err != nil {
		if c.panicHandler != nil {
			c.panicHandler(err)
		} else {
			panic(err)
		}
	}
}

package rx

import "github.com/pkg/errors"

// Never is the uninhabited failure type: a stream typed Event[V, Never]
// is declared non-failing by its shape. Correct code never constructs
// one; Error only exists so Never satisfies the error interface where a
// generic parameter needs one.
type Never struct{}

func (Never) Error() string {
	panic("rx: a Never value was constructed — this stream is declared non-failing")
}

// UsageFault marks a programming error (§7.3): sending after terminal is
// a no-op, not a fault, but reentrant Modify, disposed-scheduler use and
// similar are fatal and distinct from stream failures.
type UsageFault struct {
	cause error
}

func (f *UsageFault) Error() string { return f.cause.Error() }
func (f *UsageFault) Unwrap() error { return f.cause }

func newUsageFault(msg string) *UsageFault {
	return &UsageFault{cause: errors.New(msg)}
}

func newRecursionFault(msg string) *UsageFault {
	return &UsageFault{cause: errors.WithStack(errors.New(msg))}
}

package rx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventConstructorsAndPredicates(t *testing.T) {
	v := ValueEvent[int, string](42)
	assert.True(t, v.IsValue())
	assert.False(t, v.IsTerminal())
	val, ok := v.Value()
	assert.True(t, ok)
	assert.Equal(t, 42, val)

	f := FailedEvent[int, string]("boom")
	assert.True(t, f.IsFailed())
	assert.True(t, f.IsTerminal())
	err, ok := f.Err()
	assert.True(t, ok)
	assert.Equal(t, "boom", err)

	c := CompletedEvent[int, string]()
	assert.True(t, c.IsCompleted())
	assert.True(t, c.IsTerminal())

	i := InterruptedEvent[int, string]()
	assert.True(t, i.IsInterrupted())
	assert.True(t, i.IsTerminal())
}

func TestMapEvent(t *testing.T) {
	v := ValueEvent[int, string](3)
	mapped := MapEvent(v, func(n int) string { return "n" })
	mv, ok := mapped.Value()
	assert.True(t, ok)
	assert.Equal(t, "n", mv)

	c := CompletedEvent[int, string]()
	mc := MapEvent(c, func(n int) string { return "n" })
	assert.True(t, mc.IsCompleted())

	f := FailedEvent[int, string]("boom")
	mf := MapEvent(f, func(n int) string { return "n" })
	assert.True(t, mf.IsFailed())
	ferr, _ := mf.Err()
	assert.Equal(t, "boom", ferr)
}

func TestMapEventError(t *testing.T) {
	f := FailedEvent[int, string]("boom")
	mapped := MapEventError(f, func(s string) int { return len(s) })
	err, ok := mapped.Err()
	assert.True(t, ok)
	assert.Equal(t, 4, err)

	v := ValueEvent[int, string](7)
	mv := MapEventError(v, func(s string) int { return len(s) })
	val, ok := mv.Value()
	assert.True(t, ok)
	assert.Equal(t, 7, val)
}

func TestNeverPanicsOnConstruction(t *testing.T) {
	assert.Panics(t, func() {
		var n Never
		_ = n.Error()
	})
}

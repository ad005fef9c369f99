package rx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMutablePropertySetAndModify(t *testing.T) {
	p := NewMutableProperty(1)
	assert.Equal(t, 1, p.Value())

	var changes []int
	p.Signal().ObserveValues(func(v int) { changes = append(changes, v) })

	p.Set(2)
	result := p.Modify(func(v int) int { return v + 10 })

	assert.Equal(t, 12, result)
	assert.Equal(t, 12, p.Value())
	assert.Equal(t, []int{2, 12}, changes)
}

func TestMutablePropertyReentrantModifyPanics(t *testing.T) {
	p := NewMutableProperty(1)
	assert.Panics(t, func() {
		p.Modify(func(v int) int {
			return p.Modify(func(v int) int { return v })
		})
	})
}

func TestPropertyProducerReplaysCurrentValueThenChanges(t *testing.T) {
	p := NewMutableProperty(1)
	prop := p.AsProperty()

	var got []int
	prop.Producer().StartWithValues(func(v int) { got = append(got, v) })
	p.Set(2)
	assert.Equal(t, []int{1, 2}, got)
}

func TestMapProperty(t *testing.T) {
	p := NewMutableProperty(1)
	derived := MapProperty(p.AsProperty(), func(v int) int { return v * 10 })
	assert.Equal(t, 10, derived.Value())
	p.Set(2)
	assert.Equal(t, 20, derived.Value())
}

func TestCombineLatestWith(t *testing.T) {
	a := NewMutableProperty(1)
	b := NewMutableProperty("x")
	combined := CombineLatestWith(a.AsProperty(), b.AsProperty())

	var got []Pair[int, string]
	combined.Signal().ObserveValues(func(p Pair[int, string]) { got = append(got, p) })
	a.Set(2)
	b.Set("y")
	assert.Equal(t, []Pair[int, string]{{2, "x"}, {2, "y"}}, got)
	assert.Equal(t, Pair[int, string]{2, "y"}, combined.Value())
}

func TestSkipRepeatsProperty(t *testing.T) {
	p := NewMutableProperty(1)
	distinct := SkipRepeatsProperty(p.AsProperty(), func(a, b int) bool { return a == b })
	var got []int
	distinct.Signal().ObserveValues(func(v int) { got = append(got, v) })
	p.Set(1)
	p.Set(2)
	p.Set(2)
	p.Set(3)
	assert.Equal(t, []int{2, 3}, got)
}

func TestBindSignal(t *testing.T) {
	source, input, interrupt := Pipe[int, Never]()
	defer interrupt.Dispose()
	target := NewMutableProperty(0)

	d := BindSignal(target, source)
	input.SendValue(5)
	assert.Equal(t, 5, target.Value())
	d.Dispose()
	input.SendValue(10)
	assert.Equal(t, 5, target.Value())
}

func TestBindProperty(t *testing.T) {
	source := NewMutableProperty(1)
	target := NewMutableProperty(0)

	BindProperty(target, source.AsProperty())
	assert.Equal(t, 1, target.Value())
	source.Set(2)
	assert.Equal(t, 2, target.Value())
}

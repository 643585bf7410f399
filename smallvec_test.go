package pubgrub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmallVecInlineCases(t *testing.T) {
	t.Parallel()

	empty := newSmallVec[int](nil)
	assert.Equal(t, 0, empty.Len())
	assert.True(t, empty.IsEmpty())
	assert.Nil(t, empty.Slice())

	one := newSmallVec([]int{7})
	assert.Equal(t, 1, one.Len())
	assert.Equal(t, []int{7}, one.Slice())
	assert.Equal(t, 7, one.At(0))

	two := newSmallVec([]int{7, 9})
	assert.Equal(t, 2, two.Len())
	assert.Equal(t, []int{7, 9}, two.Slice())
	assert.Equal(t, 9, two.At(1))

	many := newSmallVec([]int{1, 2, 3, 4})
	assert.Equal(t, 4, many.Len())
	assert.Equal(t, []int{1, 2, 3, 4}, many.Slice())
}

func TestSmallVecPushGrowsThroughStates(t *testing.T) {
	t.Parallel()

	v := newSmallVec[string](nil)
	assert.True(t, v.IsEmpty())

	v = v.Push("a")
	assert.Equal(t, []string{"a"}, v.Slice())

	v = v.Push("b")
	assert.Equal(t, []string{"a", "b"}, v.Slice())

	v = v.Push("c")
	assert.Equal(t, []string{"a", "b", "c"}, v.Slice())

	v = v.Push("d")
	assert.Equal(t, []string{"a", "b", "c", "d"}, v.Slice())
}

func TestSmallVecPushDoesNotMutateOriginal(t *testing.T) {
	t.Parallel()

	base := newSmallVec([]int{1})
	grown := base.Push(2)

	assert.Equal(t, []int{1}, base.Slice())
	assert.Equal(t, []int{1, 2}, grown.Slice())
}

func TestSmallVecAtPanicsOutOfRange(t *testing.T) {
	t.Parallel()

	v := newSmallVec([]int{1, 2})
	assert.Panics(t, func() {
		v.At(2)
	})
}

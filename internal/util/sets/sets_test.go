package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnionIsCommutativeAndIdempotent(t *testing.T) {
	a := New("x", "y")
	b := New("y", "z")

	assert.True(t, Equal(Union(a, b), Union(b, a)))
	assert.True(t, Equal(Union(a, a), a))
	assert.Equal(t, []string{"x", "y", "z"}, Sorted(Union(a, b)))
}

func TestNilSetReads(t *testing.T) {
	var s Set[int]
	assert.False(t, s.Has(1))
	assert.Equal(t, 0, s.Len())
	assert.True(t, Equal(s, New[int]()))

	s = Ensure(s)
	s.Add(1)
	assert.True(t, s.Has(1))
}

func TestCloneIsIndependent(t *testing.T) {
	a := New(1, 2)
	c := a.Clone()
	c.Add(3)
	c.Delete(1)

	assert.Equal(t, []int{1, 2}, Sorted(a))
	assert.Equal(t, []int{2, 3}, Sorted(c))
}

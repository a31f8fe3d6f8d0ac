package stack_test

import (
	"testing"

	"github.com/lestrrat-go/xmlentity/internal/stack"
	"github.com/stretchr/testify/require"
)

type item string

func (i item) Key() string { return string(i) }

func TestUnique(t *testing.T) {
	var s stack.Unique[item]
	require.NoError(t, s.Push("a"))
	require.NoError(t, s.Push("b"))
	require.ErrorIs(t, s.Push("a"), stack.ErrDuplicateItem)
	require.Equal(t, 2, s.Len())

	require.Equal(t, 0, s.Index("a"))
	require.Equal(t, 1, s.Index("b"))
	require.Equal(t, -1, s.Index("c"))

	top, ok := s.Top()
	require.True(t, ok)
	require.Equal(t, item("b"), top)

	s.Pop()
	_, ok = s.Lookup("b")
	require.False(t, ok)
	require.NoError(t, s.Push("b"), "popped keys may be pushed again")
}

func TestSimplePopShrinks(t *testing.T) {
	var s stack.Simple[int]
	for i := range 100 {
		s.Push(i)
	}
	s.Pop(90)
	require.Equal(t, 10, s.Len())
	require.LessOrEqual(t, s.Cap(), 20, "backing array should be reallocated")

	s.Pop(20)
	require.Equal(t, 0, s.Len())
	_, ok := s.Top()
	require.False(t, ok)
}

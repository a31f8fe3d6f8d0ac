package orderedmap_test

import (
	"testing"

	"github.com/lestrrat-go/xmlentity/internal/orderedmap"
	"github.com/stretchr/testify/require"
)

func TestFirstEntryWins(t *testing.T) {
	m := orderedmap.New[string, int]()
	require.NoError(t, m.Set("b", 1))
	require.NoError(t, m.Set("a", 2))
	require.ErrorIs(t, m.Set("b", 3), orderedmap.ErrDuplicateEntry)

	v, ok := m.Get("b")
	require.True(t, ok)
	require.Equal(t, 1, v)

	var keys []string
	for k := range m.Range() {
		keys = append(keys, k)
	}
	require.Equal(t, []string{"b", "a"}, keys)

	m.Clear()
	require.Equal(t, 0, m.Len())
	require.False(t, m.Has("a"))
	require.NoError(t, m.Set("b", 4))
}

package pool_test

import (
	"sync"
	"testing"

	"github.com/lestrrat-go/xmlentity/internal/pool"
	"github.com/stretchr/testify/require"
)

func TestByteSliceReuse(t *testing.T) {
	bs := pool.ByteSlice()

	b := bs.Get()
	require.Empty(t, b)
	require.GreaterOrEqual(t, cap(b), 64)

	b = append(b, "<?xml"...)
	bs.Put(b)

	// whatever comes back must not carry the previous frame's bytes
	b = bs.Get()
	require.Empty(t, b)

	big := bs.GetCapacity(8192)
	require.Empty(t, big)
	require.GreaterOrEqual(t, cap(big), 8192)

	require.NotPanics(t, func() {
		bs.Put(nil)
	})
}

// Documents probed in parallel each open their own entities
func TestByteSliceFramesInParallel(t *testing.T) {
	const frames = 16
	const size = 256

	bs := pool.ByteSlice()
	results := make([][]byte, frames)

	var wg sync.WaitGroup
	for i := range frames {
		wg.Add(1)
		go func() {
			defer wg.Done()

			buf := bs.GetCapacity(size)
			for range size {
				buf = append(buf, byte('A'+i))
			}
			results[i] = append([]byte(nil), buf...)
			bs.Put(buf)
		}()
	}
	wg.Wait()

	for i, got := range results {
		require.Len(t, got, size)
		for _, c := range got {
			require.Equal(t, byte('A'+i), c, "frame %d saw another frame's bytes", i)
		}
	}
}

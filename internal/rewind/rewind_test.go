package rewind_test

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/lestrrat-go/xmlentity/internal/rewind"
	"github.com/stretchr/testify/require"
)

type closeRecorder struct {
	io.Reader
	closed int
}

func (c *closeRecorder) Close() error {
	c.closed++
	return nil
}

func TestReplayAfterReset(t *testing.T) {
	const input = "\xEF\xBB\xBF<?xml version=\"1.0\"?><root/>"
	r := rewind.New(iotest.OneByteReader(strings.NewReader(input)), 64)

	var head []byte
	for range 4 {
		b, err := r.ReadAndBuffer()
		require.NoError(t, err)
		head = append(head, b)
	}
	require.Equal(t, []byte(input[:4]), head)

	r.Reset()
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, input, string(got))
}

func TestRewindToStart(t *testing.T) {
	const input = "\xFE\xFFabcdef"
	r := rewind.New(strings.NewReader(input), 64)

	n, err := r.Skip(2)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	r.MarkStart()

	buf := make([]byte, 3)
	_, err = io.ReadFull(r, buf)
	require.NoError(t, err)
	require.Equal(t, "abc", string(buf))

	require.NoError(t, r.Rewind())
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "abcdef", string(got))
}

func TestChunkedPassthrough(t *testing.T) {
	input := bytes.Repeat([]byte("0123456789"), 100)
	r := rewind.New(bytes.NewReader(input), 64)

	buf := make([]byte, 16)
	_, err := io.ReadFull(r, buf)
	require.NoError(t, err)
	buffered := r.Buffered()
	require.GreaterOrEqual(t, buffered, 16)

	r.SetChunked()
	require.True(t, r.Chunked())
	require.NoError(t, r.Rewind(), "rewinding within the buffered bytes is allowed")

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, input, got)
	require.Equal(t, buffered, r.Buffered(), "chunked reads must not grow the buffer")
	require.ErrorIs(t, r.Rewind(), rewind.ErrCannotRewind)
}

func TestShortInput(t *testing.T) {
	r := rewind.New(strings.NewReader("<"), 64)
	b, err := r.ReadAndBuffer()
	require.NoError(t, err)
	require.Equal(t, byte('<'), b)

	_, err = r.ReadAndBuffer()
	require.ErrorIs(t, err, io.EOF)

	n, err := r.Skip(10)
	require.NoError(t, err)
	require.Equal(t, 0, n)

	r.Reset()
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "<", string(got))
}

func TestClose(t *testing.T) {
	src := &closeRecorder{Reader: strings.NewReader("abc")}
	r := rewind.New(src, 64)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	require.Equal(t, 1, src.closed)

	_, err := r.Read(make([]byte, 1))
	require.ErrorIs(t, err, rewind.ErrClosed)
}

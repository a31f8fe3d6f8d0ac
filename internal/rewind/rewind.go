// Package rewind implements a byte source that remembers what was read
// from it so that the bytes can be delivered again.
//
// Encoding detection reads a few leading bytes, resets, and hands the
// source to a decoder that must see those same bytes. Until SetChunked
// is called every byte that comes out of the underlying reader is kept.
// After that, reads fall through to the underlying reader once the
// buffered bytes have been replayed.
package rewind

import (
	"io"

	"github.com/lestrrat-go/xmlentity/internal/pool"
	"github.com/pkg/errors"
)

var (
	ErrClosed       = errors.New(`rewind: read from closed source`)
	ErrCannotRewind = errors.New(`rewind: bytes were read past the buffer`)
)

type Reader struct {
	src         io.Reader
	buf         []byte
	offset      int
	start       int
	mark        int
	eof         bool
	chunked     bool
	passthrough bool
	closed      bool
}

// New wraps src. size is the initial capacity of the replay buffer.
func New(src io.Reader, size int) *Reader {
	return &Reader{
		src: src,
		buf: pool.ByteSlice().GetCapacity(size),
	}
}

// ReadAndBuffer returns the next byte, pulling it from the underlying
// reader and recording it if it has not been seen before.
func (r *Reader) ReadAndBuffer() (byte, error) {
	if r.closed {
		return 0, ErrClosed
	}
	if r.offset < len(r.buf) {
		b := r.buf[r.offset]
		r.offset++
		return b, nil
	}
	if r.eof {
		return 0, io.EOF
	}

	var one [1]byte
	if _, err := io.ReadFull(r.src, one[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			r.eof = true
			return 0, io.EOF
		}
		return 0, errors.Wrap(err, `failed to read from source`)
	}
	r.buf = append(r.buf, one[0])
	r.offset++
	return one[0], nil
}

func (r *Reader) ReadByte() (byte, error) {
	return r.ReadAndBuffer()
}

func (r *Reader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	if r.offset < len(r.buf) {
		n := copy(p, r.buf[r.offset:])
		r.offset += n
		return n, nil
	}

	if r.eof {
		return 0, io.EOF
	}

	n, err := r.src.Read(p)
	if err == io.EOF {
		r.eof = true
	}
	if r.chunked {
		if n > 0 {
			r.passthrough = true
		}
		return n, err
	}

	r.buf = append(r.buf, p[:n]...)
	r.offset += n
	return n, err
}

// Skip discards up to n bytes and reports how many were discarded.
func (r *Reader) Skip(n int) (int, error) {
	var skipped int
	for skipped < n {
		if r.offset < len(r.buf) {
			k := min(n-skipped, len(r.buf)-r.offset)
			r.offset += k
			skipped += k
			continue
		}

		if r.chunked {
			k, err := io.CopyN(io.Discard, r, int64(n-skipped))
			skipped += int(k)
			if err == io.EOF {
				err = nil
			}
			return skipped, err
		}

		if _, err := r.ReadAndBuffer(); err != nil {
			if err == io.EOF {
				return skipped, nil
			}
			return skipped, err
		}
		skipped++
	}
	return skipped, nil
}

// Mark remembers the current position for a later Reset
func (r *Reader) Mark() {
	r.mark = r.offset
}

func (r *Reader) Reset() {
	r.offset = r.mark
}

// MarkStart records the current position as the point Rewind returns
// to. It is used to leave a byte order mark behind.
func (r *Reader) MarkStart() {
	r.start = r.offset
}

// Rewind moves back to the start position so a different decoder can
// re-read the entity from the beginning.
func (r *Reader) Rewind() error {
	if r.passthrough {
		return ErrCannotRewind
	}
	r.offset = r.start
	return nil
}

// SetChunked stops recording reads that go past the buffered bytes.
// There is no way back.
func (r *Reader) SetChunked() {
	r.chunked = true
}

func (r *Reader) Chunked() bool {
	return r.chunked
}

// Buffered reports how many bytes are held for replay
func (r *Reader) Buffered() int {
	return len(r.buf)
}

// Close releases the replay buffer and closes the underlying reader if
// it is an io.Closer. Calling Close more than once is a no-op.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	pool.ByteSlice().Put(r.buf)
	r.buf = nil

	src := r.src
	r.src = nil
	if c, ok := src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

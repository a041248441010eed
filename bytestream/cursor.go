// Package bytestream provides a growable byte buffer with a read cursor and
// fixed-width typed accessors, the primitive the NBT and region codecs are
// built on.
//
// A Cursor is created with a swap flag. When set, multi-byte values are
// byte-reversed relative to the host order; NBT and region data are
// big-endian, so on a little-endian host those cursors are created with swap
// enabled (see NewBigEndian).
//
// Cursors are not safe for concurrent use.
package bytestream

import (
	"bytes"
	"errors"
	"fmt"
	"math"
)

// ErrEndOfStream is returned when a read needs more bytes than remain.
var ErrEndOfStream = errors.New("bytestream: end of stream")

// Cursor is an owned byte buffer with a read position. Reads consume from the
// position; writes append to the end of the buffer.
type Cursor struct {
	buf    []byte
	pos    int
	swap   bool
	engine Engine
}

// New creates a cursor over data. The cursor takes ownership of data.
func New(data []byte, swap bool) *Cursor {
	c := &Cursor{buf: data, swap: swap, engine: NativeEngine()}
	if swap {
		c.engine = SwappedEngine()
	}

	return c
}

// NewBigEndian creates a cursor that reads and writes big-endian values
// regardless of the host byte order.
func NewBigEndian(data []byte) *Cursor {
	return New(data, BigEndianSwap())
}

// Bytes returns the full buffer, independent of the cursor position.
func (c *Cursor) Bytes() []byte { return c.buf }

// Len returns the total number of bytes held.
func (c *Cursor) Len() int { return len(c.buf) }

// Position returns the read position.
func (c *Cursor) Position() int { return c.pos }

// Swapped reports whether multi-byte values are byte-reversed from host order.
func (c *Cursor) Swapped() bool { return c.swap }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// Good reports whether any unread bytes remain.
func (c *Cursor) Good() bool { return c.Remaining() > 0 }

// Reset rewinds the read position to the start without discarding data.
func (c *Cursor) Reset() { c.pos = 0 }

// Equal compares position and full content. The swap flag is not compared.
func (c *Cursor) Equal(other *Cursor) bool {
	if c == other {
		return true
	}
	if other == nil {
		return false
	}

	return c.pos == other.pos && bytes.Equal(c.buf, other.buf)
}

func (c *Cursor) String() string {
	state := "INACTIVE"
	if c.Good() {
		state = "ACTIVE"
	}
	s := fmt.Sprintf("%s, size: %d, pos: %d", state, len(c.buf), c.pos)
	if c.Good() {
		s += fmt.Sprintf(", curr: %d", int8(c.buf[c.pos]))
	}
	if c.swap {
		s += " (SWAP ENDIAN)"
	}

	return s
}

// next returns the next n bytes and advances past them.
func (c *Cursor) next(n int) ([]byte, error) {
	if n < 0 || c.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at position %d, have %d", ErrEndOfStream, n, c.pos, c.Remaining())
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n

	return b, nil
}

// ReadU8 reads one byte. Like every ReadXX method it fails with
// ErrEndOfStream, leaving the position unchanged, when too few bytes remain.
func (c *Cursor) ReadU8() (uint8, error) {
	b, err := c.next(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

func (c *Cursor) ReadI8() (int8, error) {
	v, err := c.ReadU8()
	return int8(v), err
}

// ReadU16 reads a 16-bit value in the cursor's byte order.
func (c *Cursor) ReadU16() (uint16, error) {
	b, err := c.next(2)
	if err != nil {
		return 0, err
	}

	return c.engine.Uint16(b), nil
}

func (c *Cursor) ReadI16() (int16, error) {
	v, err := c.ReadU16()
	return int16(v), err
}

func (c *Cursor) ReadU32() (uint32, error) {
	b, err := c.next(4)
	if err != nil {
		return 0, err
	}

	return c.engine.Uint32(b), nil
}

func (c *Cursor) ReadI32() (int32, error) {
	v, err := c.ReadU32()
	return int32(v), err
}

func (c *Cursor) ReadI64() (int64, error) {
	b, err := c.next(8)
	if err != nil {
		return 0, err
	}

	return int64(c.engine.Uint64(b)), nil
}

func (c *Cursor) ReadU64() (uint64, error) {
	v, err := c.ReadI64()
	return uint64(v), err
}

// ReadF32 reads an IEEE 754 single-precision value.
func (c *Cursor) ReadF32() (float32, error) {
	v, err := c.ReadU32()
	return math.Float32frombits(v), err
}

func (c *Cursor) ReadF64() (float64, error) {
	b, err := c.next(8)
	if err != nil {
		return 0, err
	}

	return math.Float64frombits(c.engine.Uint64(b)), nil
}

// ReadBytes returns a copy of the next n bytes.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	b, err := c.next(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)

	return out, nil
}

// Skip advances the read position by n bytes.
func (c *Cursor) Skip(n int) error {
	_, err := c.next(n)
	return err
}

// Writes always append to the end of the buffer; the read position is untouched.

func (c *Cursor) WriteU8(v uint8) { c.buf = append(c.buf, v) }

func (c *Cursor) WriteI8(v int8) { c.buf = append(c.buf, byte(v)) }

func (c *Cursor) WriteU16(v uint16) { c.buf = c.engine.AppendUint16(c.buf, v) }

func (c *Cursor) WriteI16(v int16) { c.WriteU16(uint16(v)) }

func (c *Cursor) WriteU32(v uint32) { c.buf = c.engine.AppendUint32(c.buf, v) }

func (c *Cursor) WriteI32(v int32) { c.WriteU32(uint32(v)) }

func (c *Cursor) WriteU64(v uint64) { c.buf = c.engine.AppendUint64(c.buf, v) }

func (c *Cursor) WriteI64(v int64) { c.WriteU64(uint64(v)) }

func (c *Cursor) WriteF32(v float32) { c.WriteU32(math.Float32bits(v)) }

func (c *Cursor) WriteF64(v float64) { c.WriteU64(math.Float64bits(v)) }

func (c *Cursor) WriteBytes(b []byte) { c.buf = append(c.buf, b...) }

// Grow ensures room for another n bytes without reallocation.
func (c *Cursor) Grow(n int) {
	if cap(c.buf)-len(c.buf) < n {
		buf := make([]byte, len(c.buf), len(c.buf)+n)
		copy(buf, c.buf)
		c.buf = buf
	}
}

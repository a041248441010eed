package bytestream

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBigEndianRoundTrip(t *testing.T) {
	require := require.New(t)

	c := NewBigEndian(nil)
	c.WriteI8(-3)
	c.WriteI16(-1234)
	c.WriteI32(0x01020304)
	c.WriteI64(-9876543210)
	c.WriteF32(3.5)
	c.WriteF64(math.Pi)
	c.WriteBytes([]byte("abc"))

	require.Equal([]byte{0x01, 0x02, 0x03, 0x04}, c.Bytes()[3:7], "int32 must be stored big-endian")

	i8, err := c.ReadI8()
	require.NoError(err)
	require.Equal(int8(-3), i8)

	i16, err := c.ReadI16()
	require.NoError(err)
	require.Equal(int16(-1234), i16)

	i32, err := c.ReadI32()
	require.NoError(err)
	require.Equal(int32(0x01020304), i32)

	i64, err := c.ReadI64()
	require.NoError(err)
	require.Equal(int64(-9876543210), i64)

	f32, err := c.ReadF32()
	require.NoError(err)
	require.Equal(float32(3.5), f32)

	f64, err := c.ReadF64()
	require.NoError(err)
	require.Equal(math.Pi, f64)

	raw, err := c.ReadBytes(3)
	require.NoError(err)
	require.Equal("abc", string(raw))

	require.False(c.Good())
	require.Equal(0, c.Remaining())
}

func TestSwapFlag(t *testing.T) {
	require := require.New(t)

	plain := New(nil, false)
	plain.WriteU32(0x0A0B0C0D)
	swapped := New(nil, true)
	swapped.WriteU32(0x0A0B0C0D)

	expected := make([]byte, 4)
	NativeEngine().PutUint32(expected, 0x0A0B0C0D)
	require.Equal(expected, plain.Bytes())

	for i := range 4 {
		require.Equal(plain.Bytes()[i], swapped.Bytes()[3-i])
	}
	require.True(swapped.Swapped())
	require.False(plain.Swapped())
}

func TestNewBigEndianIgnoresHostOrder(t *testing.T) {
	c := NewBigEndian(nil)
	c.WriteU16(0x0102)
	require.Equal(t, binary.BigEndian.AppendUint16(nil, 0x0102), c.Bytes())
}

func TestEndOfStream(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		read func(c *Cursor) error
	}{
		{"u8 on empty", nil, func(c *Cursor) error { _, err := c.ReadU8(); return err }},
		{"i16 on one byte", []byte{1}, func(c *Cursor) error { _, err := c.ReadI16(); return err }},
		{"i32 on three bytes", []byte{1, 2, 3}, func(c *Cursor) error { _, err := c.ReadI32(); return err }},
		{"i64 on seven bytes", make([]byte, 7), func(c *Cursor) error { _, err := c.ReadI64(); return err }},
		{"f32 on two bytes", make([]byte, 2), func(c *Cursor) error { _, err := c.ReadF32(); return err }},
		{"f64 on four bytes", make([]byte, 4), func(c *Cursor) error { _, err := c.ReadF64(); return err }},
		{"bytes past end", make([]byte, 4), func(c *Cursor) error { _, err := c.ReadBytes(5); return err }},
		{"negative length", make([]byte, 4), func(c *Cursor) error { _, err := c.ReadBytes(-1); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewBigEndian(tt.data)
			err := tt.read(c)
			require.ErrorIs(t, err, ErrEndOfStream)
			require.Equal(t, 0, c.Position(), "a failed read must not advance the cursor")
		})
	}
}

func TestResetRereadsBuffer(t *testing.T) {
	require := require.New(t)

	c := NewBigEndian([]byte{0, 0, 0, 7})
	v, err := c.ReadI32()
	require.NoError(err)
	require.Equal(int32(7), v)
	require.False(c.Good())

	c.Reset()
	require.True(c.Good())
	v, err = c.ReadI32()
	require.NoError(err)
	require.Equal(int32(7), v)
}

func TestEqual(t *testing.T) {
	require := require.New(t)

	a := NewBigEndian([]byte{1, 2, 3})
	b := NewBigEndian([]byte{1, 2, 3})
	require.True(a.Equal(b))

	_, err := a.ReadU8()
	require.NoError(err)
	require.False(a.Equal(b), "position participates in equality")

	_, err = b.ReadU8()
	require.NoError(err)
	require.True(a.Equal(b))

	require.False(a.Equal(NewBigEndian([]byte{1, 2, 4})))
	require.False(a.Equal(nil))
}

func TestString(t *testing.T) {
	c := New([]byte{0xFF}, false)
	require.Equal(t, "ACTIVE, size: 1, pos: 0, curr: -1", c.String())

	_, err := c.ReadU8()
	require.NoError(t, err)
	require.Equal(t, "INACTIVE, size: 1, pos: 1", c.String())
}

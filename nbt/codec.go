package nbt

import (
	"fmt"
	"math"

	"github.com/astei/anvil/bytestream"
)

// MaxDepth bounds container nesting on both decode and encode.
const MaxDepth = 512

// Marshal encodes t as a root tag into a new big-endian buffer.
func Marshal(t Tag) ([]byte, error) {
	c := bytestream.NewBigEndian(nil)
	if err := Encode(c, t); err != nil {
		return nil, err
	}

	return c.Bytes(), nil
}

// Unmarshal decodes a single root tag from data. Trailing bytes are ignored.
func Unmarshal(data []byte) (Tag, error) {
	return Decode(bytestream.NewBigEndian(data))
}

// Decode reads one root tag: a type byte, then, unless the type is End, a
// name and the payload. A leading End byte yields an End tag, which callers
// treat as an empty document.
func Decode(c *bytestream.Cursor) (Tag, error) {
	t, err := decodeNamed(c, 0)
	if err != nil {
		return nil, fmt.Errorf("nbt: decode: %w", err)
	}

	return t, nil
}

func decodeNamed(c *bytestream.Cursor, depth int) (Tag, error) {
	b, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	kind := Kind(b)
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: 0x%02x at position %d", ErrUnknownTagKind, b, c.Position()-1)
	}
	if kind == KindEnd {
		return &End{}, nil
	}
	name, err := readString(c)
	if err != nil {
		return nil, err
	}

	return decodePayload(c, kind, name, depth)
}

func decodePayload(c *bytestream.Cursor, kind Kind, name string, depth int) (Tag, error) {
	n := named{name}

	switch kind {
	case KindEnd:
		return &End{}, nil
	case KindByte:
		v, err := c.ReadI8()
		return &Byte{n, v}, err
	case KindShort:
		v, err := c.ReadI16()
		return &Short{n, v}, err
	case KindInt:
		v, err := c.ReadI32()
		return &Int{n, v}, err
	case KindLong:
		v, err := c.ReadI64()
		return &Long{n, v}, err
	case KindFloat:
		v, err := c.ReadF32()
		return &Float{n, v}, err
	case KindDouble:
		v, err := c.ReadF64()
		return &Double{n, v}, err
	case KindByteArray:
		length, err := readLength(c)
		if err == nil {
			err = checkFits(c, length, 1)
		}
		if err != nil {
			return nil, err
		}
		v, err := c.ReadBytes(length)
		if err != nil {
			return nil, err
		}
		return &ByteArray{n, v}, nil
	case KindString:
		v, err := readString(c)
		if err != nil {
			return nil, err
		}
		return &String{n, v}, nil
	case KindIntArray:
		length, err := readLength(c)
		if err == nil {
			err = checkFits(c, length, 4)
		}
		if err != nil {
			return nil, err
		}
		v := make([]int32, length)
		for i := range v {
			if v[i], err = c.ReadI32(); err != nil {
				return nil, err
			}
		}
		return &IntArray{n, v}, nil
	case KindList:
		return decodeList(c, n, depth)
	case KindCompound:
		return decodeCompound(c, n, depth)
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownTagKind, byte(kind))
	}
}

func decodeList(c *bytestream.Cursor, n named, depth int) (Tag, error) {
	if depth >= MaxDepth {
		return nil, ErrTooDeep
	}
	b, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	elem := Kind(b)
	if !elem.Valid() {
		return nil, fmt.Errorf("%w: list element 0x%02x", ErrUnknownTagKind, b)
	}
	length, err := readLength(c)
	if err != nil {
		return nil, err
	}
	// Stricter than older readers, which produced length End elements here.
	if elem == KindEnd && length > 0 {
		return nil, fmt.Errorf("%w: %d elements", ErrInvalidList, length)
	}
	// Every element other than End occupies at least one byte.
	if err := checkFits(c, length, 1); err != nil {
		return nil, err
	}

	l := &List{named: n, elem: elem, items: make([]Tag, 0, length)}
	for range length {
		item, err := decodePayload(c, elem, "", depth+1)
		if err != nil {
			return nil, err
		}
		l.items = append(l.items, item)
	}

	return l, nil
}

func decodeCompound(c *bytestream.Cursor, n named, depth int) (Tag, error) {
	if depth >= MaxDepth {
		return nil, ErrTooDeep
	}
	compound := &Compound{named: n}
	for {
		member, err := decodeNamed(c, depth+1)
		if err != nil {
			return nil, err
		}
		if member.Kind() == KindEnd {
			return compound, nil
		}
		compound.items = append(compound.items, member)
	}
}

// readLength reads a signed 32-bit count. Negative counts are taken as their
// absolute value, which is how existing files have always been read.
func readLength(c *bytestream.Cursor) (int, error) {
	raw, err := c.ReadI32()
	if err != nil {
		return 0, err
	}
	length := int64(raw)
	if length < 0 {
		length = -length
	}

	return int(length), nil
}

// checkFits rejects a count whose width-byte elements cannot fit in what is
// left of the stream, before anything is allocated for them.
func checkFits(c *bytestream.Cursor, length, width int) error {
	if int64(length)*int64(width) > int64(c.Remaining()) {
		return fmt.Errorf("%w: %d elements of %d bytes, %d bytes left",
			bytestream.ErrEndOfStream, length, width, c.Remaining())
	}

	return nil
}

func readString(c *bytestream.Cursor) (string, error) {
	length, err := c.ReadU16()
	if err != nil {
		return "", err
	}
	b, err := c.ReadBytes(int(length))
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Encode writes t as a root tag: type byte, name and payload.
func Encode(c *bytestream.Cursor, t Tag) error {
	if err := EncodeTag(c, t, false); err != nil {
		return fmt.Errorf("nbt: encode: %w", err)
	}

	return nil
}

// EncodeTag writes t. With asListElement set only the payload is written;
// otherwise the type byte and name precede it, as for a compound member.
func EncodeTag(c *bytestream.Cursor, t Tag, asListElement bool) error {
	return encodeTag(c, t, asListElement, 0)
}

func encodeTag(c *bytestream.Cursor, t Tag, asListElement bool, depth int) error {
	if t == nil {
		return fmt.Errorf("%w: nil tag", ErrInvalidTag)
	}
	if !asListElement {
		c.WriteU8(byte(t.Kind()))
		if t.Kind() == KindEnd {
			return nil
		}
		if err := writeString(c, t.Name()); err != nil {
			return err
		}
	}

	return encodePayload(c, t, depth)
}

func encodePayload(c *bytestream.Cursor, t Tag, depth int) error {
	switch t := t.(type) {
	case *End:
	case *Byte:
		c.WriteI8(t.Value)
	case *Short:
		c.WriteI16(t.Value)
	case *Int:
		c.WriteI32(t.Value)
	case *Long:
		c.WriteI64(t.Value)
	case *Float:
		c.WriteF32(t.Value)
	case *Double:
		c.WriteF64(t.Value)
	case *ByteArray:
		if err := writeLength(c, len(t.Value)); err != nil {
			return err
		}
		c.WriteBytes(t.Value)
	case *String:
		return writeString(c, t.Value)
	case *IntArray:
		if err := writeLength(c, len(t.Value)); err != nil {
			return err
		}
		c.Grow(4 * len(t.Value))
		for _, v := range t.Value {
			c.WriteI32(v)
		}
	case *List:
		if depth >= MaxDepth {
			return ErrTooDeep
		}
		c.WriteU8(byte(t.elem))
		if err := writeLength(c, len(t.items)); err != nil {
			return err
		}
		for _, item := range t.items {
			if item == nil || item.Kind() != t.elem {
				return fmt.Errorf("%w: list %q declares %s", ErrListKindMismatch, t.Name(), t.elem)
			}
			if err := encodePayload(c, item, depth+1); err != nil {
				return err
			}
		}
	case *Compound:
		if depth >= MaxDepth {
			return ErrTooDeep
		}
		for _, member := range t.items {
			if member == nil || member.Kind() == KindEnd {
				return fmt.Errorf("%w: end tag in compound %q", ErrInvalidTag, t.Name())
			}
			if err := encodeTag(c, member, false, depth+1); err != nil {
				return err
			}
		}
		c.WriteU8(byte(KindEnd))
	default:
		return fmt.Errorf("%w: %T", ErrUnknownTagKind, t)
	}

	return nil
}

func writeLength(c *bytestream.Cursor, n int) error {
	if n > math.MaxInt32 {
		return fmt.Errorf("%w: %d elements exceed a 32-bit length", ErrInvalidTag, n)
	}
	c.WriteI32(int32(n))

	return nil
}

func writeString(c *bytestream.Cursor, s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("%w: string of %d bytes exceeds a 16-bit length", ErrInvalidTag, len(s))
	}
	c.WriteU16(uint16(len(s)))
	c.WriteBytes([]byte(s))

	return nil
}

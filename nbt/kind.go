package nbt

// Kind identifies one of the twelve tag variants. The numeric values are the
// type bytes used on the wire.
type Kind byte

const (
	KindEnd       Kind = 0x00
	KindByte      Kind = 0x01
	KindShort     Kind = 0x02
	KindInt       Kind = 0x03
	KindLong      Kind = 0x04
	KindFloat     Kind = 0x05
	KindDouble    Kind = 0x06
	KindByteArray Kind = 0x07
	KindString    Kind = 0x08
	KindList      Kind = 0x09
	KindCompound  Kind = 0x0a
	KindIntArray  Kind = 0x0b
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k <= KindIntArray
}

func (k Kind) String() string {
	switch k {
	case KindEnd:
		return "END"
	case KindByte:
		return "BYTE"
	case KindShort:
		return "SHORT"
	case KindInt:
		return "INT"
	case KindLong:
		return "LONG"
	case KindFloat:
		return "FLOAT"
	case KindDouble:
		return "DOUBLE"
	case KindByteArray:
		return "BYTE ARRAY"
	case KindString:
		return "STRING"
	case KindList:
		return "LIST"
	case KindCompound:
		return "COMPOUND"
	case KindIntArray:
		return "INT ARRAY"
	default:
		return "UNKNOWN"
	}
}

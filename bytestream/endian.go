package bytestream

import (
	"encoding/binary"
	"unsafe"
)

// Engine combines binary.ByteOrder and binary.AppendByteOrder so a cursor can
// decode in place and append without scratch buffers.
type Engine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// NativeEngine reports the host byte order.
func NativeEngine() Engine {
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// SwappedEngine returns the byte order opposite to the host's.
func SwappedEngine() Engine {
	if NativeEngine() == Engine(binary.LittleEndian) {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// BigEndianSwap reports whether big-endian data needs byte reversal on this host.
func BigEndianSwap() bool {
	return NativeEngine() == Engine(binary.LittleEndian)
}

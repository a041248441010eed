package region

import "fmt"

// Slot describes where a chunk lives in the file. SectorOffset is the absolute
// sector index of the chunk's sub-header; zero means the slot is empty.
type Slot struct {
	SectorOffset uint32
	SectorCount  uint8
	Compression  CompressionKind
	// LastModified is in seconds since the Unix epoch.
	LastModified uint32
	// ByteLength is the compressed payload length, excluding the sub-header.
	ByteLength uint32
}

func slotFromWord(word, modified uint32) Slot {
	return Slot{
		SectorOffset: word >> 8,
		SectorCount:  uint8(word),
		LastModified: modified,
	}
}

// Empty reports whether the slot holds no chunk.
func (s Slot) Empty() bool { return s.SectorOffset == 0 }

func (s Slot) offsetWord() uint32 {
	if s.Empty() {
		return 0
	}

	return s.SectorOffset<<8 | uint32(s.SectorCount)
}

// DataOffset is the byte position of the compressed payload, just past the
// chunk's 5-byte length and compression sub-header.
func (s Slot) DataOffset() int64 {
	return int64(s.SectorOffset)*SectorSize + chunkHeaderSize
}

func (s Slot) String() string {
	return fmt.Sprintf("[%s] off: %d, len: %d, modified: %d", s.Compression, s.DataOffset(), s.ByteLength, s.LastModified)
}

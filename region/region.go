// Package region reads and writes Anvil region files: a 8192-byte header of
// 1024 offset words and 1024 timestamps, followed by 4096-byte sectors holding
// independently compressed NBT chunks.
//
// A Region is not safe for concurrent use. Concurrent readers should each open
// their own Region; concurrent writers to one file are not supported. File
// handles are held only for the duration of a single read or write pass.
package region

import (
	"errors"
	"fmt"
)

const (
	// ChunkWidth is the number of chunks along each side of a region.
	ChunkWidth = 32
	// ChunkCount is the number of slots in a region header.
	ChunkCount = ChunkWidth * ChunkWidth
	// SectorSize is the allocation unit of a region file.
	SectorSize = 4096
	// HeaderSize is the size of the offset and timestamp tables.
	HeaderSize = 2 * SectorSize

	headerSectors   = HeaderSize / SectorSize
	chunkHeaderSize = 5
	maxSectorCount  = 0xff
)

var (
	ErrIndexOutOfRange        = errors.New("anvil: index out of range")
	ErrUnfilledChunk          = errors.New("anvil: chunk not found")
	ErrUnsupportedCompression = errors.New("anvil: unsupported compression format")
	ErrUnknownCompression     = errors.New("anvil: unknown compression format")
	ErrInvalidChunkLength     = errors.New("anvil: invalid chunk length")
	ErrInvalidPath            = errors.New("anvil: not a region file")
	ErrNoSource               = errors.New("anvil: region has no backing file")
)

// CompressionKind is the per-chunk compression byte.
type CompressionKind byte

const (
	CompressionGzip CompressionKind = 1
	CompressionZlib CompressionKind = 2
)

func (k CompressionKind) String() string {
	switch k {
	case CompressionGzip:
		return "GZIP"
	case CompressionZlib:
		return "ZLIB"
	default:
		return "UNKNOWN"
	}
}

// Index maps chunk coordinates within a region to a slot index.
func Index(x, z int) (int, error) {
	if x < 0 || x >= ChunkWidth || z < 0 || z >= ChunkWidth {
		return 0, fmt.Errorf("%w: chunk %d,%d", ErrIndexOutOfRange, x, z)
	}

	return z*ChunkWidth + x, nil
}

// Coords is the inverse of Index.
func Coords(index int) (x, z int) {
	return index % ChunkWidth, index / ChunkWidth
}

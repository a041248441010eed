package region

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"os"
	"testing"

	"github.com/astei/anvil/compress"
	"github.com/astei/anvil/nbt"
	"github.com/stretchr/testify/require"
)

func TestWriteThenReadChunk(t *testing.T) {
	require := require.New(t)

	path := regionPath(t, 0, 0)
	original := xPosChunk(5)
	writeRegion(t, path, map[[2]int]nbt.Tag{{0, 0}: original})

	r, err := Open(path)
	require.NoError(err)
	require.Equal(0, r.X)
	require.Equal(0, r.Z)

	filled, err := r.IsFilled(0, 0)
	require.NoError(err)
	require.True(filled)

	tag, err := r.ReadChunk(0, 0)
	require.NoError(err)
	require.True(nbt.Equal(original, tag))

	filled, err = r.IsFilled(1, 1)
	require.NoError(err)
	require.False(filled)

	_, err = r.ReadChunk(1, 1)
	require.ErrorIs(err, ErrUnfilledChunk)
	_, err = r.Chunk(1, 1)
	require.ErrorIs(err, ErrUnfilledChunk)
}

func TestGzipChunkIsRejected(t *testing.T) {
	tests := []struct {
		name string
		kind byte
		want error
	}{
		{"gzip", byte(CompressionGzip), ErrUnsupportedCompression},
		{"unknown", 7, ErrUnknownCompression},
		{"zero", 0, ErrUnknownCompression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			path := regionPath(t, 0, 0)
			writeRegion(t, path, map[[2]int]nbt.Tag{{0, 0}: xPosChunk(1)})

			data := readFile(t, path)
			data[HeaderSize+4] = tt.kind
			require.NoError(os.WriteFile(path, data, 0o644))

			codec := newCountingCodec()
			r, err := Open(path, WithCodec(codec))
			require.NoError(err)

			slot, err := r.Slot(0, 0)
			require.NoError(err)
			require.Equal(CompressionKind(tt.kind), slot.Compression)

			_, err = r.ReadChunk(0, 0)
			require.ErrorIs(err, tt.want)
			require.Zero(codec.decompressed, "decompression must not be attempted")
		})
	}
}

func TestGenerateChunk(t *testing.T) {
	require := require.New(t)

	path := regionPath(t, 1, -2)
	r := New(1, -2)
	require.NoError(r.GenerateChunk(3, 4))

	filled, err := r.IsFilled(3, 4)
	require.NoError(err)
	require.True(filled, "generated chunks are pending for the next write")

	require.NoError(r.WriteFile(path))

	reopened, err := Open(path)
	require.NoError(err)
	root, err := reopened.ReadChunk(3, 4)
	require.NoError(err)

	level, ok := nbt.FindFirst(root, "Level").(*nbt.Compound)
	require.True(ok)

	var names []string
	for _, child := range level.Children() {
		names = append(names, child.Name())
	}
	require.Equal([]string{
		"Entities", "TileEntities", "Sections", "Biomes", "LastUpdate",
		"xPos", "zPos", "TerrainPopulated", "HeightMap",
	}, names)

	summary := Summarize(root)
	require.Equal(1*ChunkWidth+3, summary.X)
	require.Equal(-2*ChunkWidth+4, summary.Z)
	require.Zero(summary.Sections)
}

func TestCoordinateBounds(t *testing.T) {
	r := New(0, 0)
	outside := [][2]int{{32, 0}, {0, 32}, {32, 32}, {-1, 0}, {0, -1}, {100, 5}}

	for _, c := range outside {
		_, err := r.IsFilled(c[0], c[1])
		require.ErrorIs(t, err, ErrIndexOutOfRange)
		_, err = r.ReadChunk(c[0], c[1])
		require.ErrorIs(t, err, ErrIndexOutOfRange)
		_, err = r.Chunk(c[0], c[1])
		require.ErrorIs(t, err, ErrIndexOutOfRange)
		err = r.SetChunk(c[0], c[1], xPosChunk(0))
		require.ErrorIs(t, err, ErrIndexOutOfRange)
		err = r.GenerateChunk(c[0], c[1])
		require.ErrorIs(t, err, ErrIndexOutOfRange)
	}

	for x := range ChunkWidth {
		for z := range ChunkWidth {
			_, err := r.IsFilled(x, z)
			require.NoError(t, err)
			_, err = r.ReadChunk(x, z)
			require.False(t, errors.Is(err, ErrIndexOutOfRange))
			require.NoError(t, r.SetChunk(x, z, xPosChunk(int32(x))))
		}
	}
}

func TestChunkDecodedOnce(t *testing.T) {
	require := require.New(t)

	path := regionPath(t, 0, 0)
	writeRegion(t, path, map[[2]int]nbt.Tag{{2, 3}: xPosChunk(9)})

	codec := newCountingCodec()
	r, err := Open(path, WithCodec(codec))
	require.NoError(err)
	require.False(r.cache.Decoded(2, 3))

	first, err := r.Chunk(2, 3)
	require.NoError(err)
	second, err := r.Chunk(2, 3)
	require.NoError(err)

	require.Equal(1, codec.decompressed)
	require.Same(first, second)
	require.True(r.cache.Decoded(2, 3))

	// ReadChunk always goes to the file.
	_, err = r.ReadChunk(2, 3)
	require.NoError(err)
	require.Equal(2, codec.decompressed)
}

func TestWriteLayout(t *testing.T) {
	require := require.New(t)

	path := regionPath(t, 0, 0)
	writeRegion(t, path, map[[2]int]nbt.Tag{
		{1, 0}: xPosChunk(1),
		{0, 1}: xPosChunk(2),
	}, WithClock(fixedClock(1700000000)))

	data := readFile(t, path)
	require.Zero(len(data) % SectorSize)
	require.Equal(4*SectorSize, len(data))

	word := func(i int) uint32 { return binary.BigEndian.Uint32(data[i*4:]) }
	stamp := func(i int) uint32 { return binary.BigEndian.Uint32(data[SectorSize+i*4:]) }

	require.Equal(uint32(2<<8|1), word(1), "slot 1 is written first, at sector 2")
	require.Equal(uint32(3<<8|1), word(32), "slot 32 follows in the next sector")
	require.Zero(word(0))
	require.Equal(uint32(1700000000), stamp(1))
	require.Equal(uint32(1700000000), stamp(32))
	require.Zero(stamp(0))

	r, err := Open(path)
	require.NoError(err)
	header := r.Header()
	require.Equal(2, header.CountOccupied())

	slot, err := r.Slot(1, 0)
	require.NoError(err)
	length := binary.BigEndian.Uint32(data[2*SectorSize:])
	require.Equal(slot.ByteLength+1, length, "sub-header length counts the compression byte")
	require.Equal(byte(CompressionZlib), data[2*SectorSize+4])
	require.Equal(int64(2*SectorSize+5), slot.DataOffset())

	padding := data[2*SectorSize+5+int(slot.ByteLength) : 3*SectorSize]
	require.Equal(make([]byte, len(padding)), padding)
}

func TestRewriteReflowsSectors(t *testing.T) {
	require := require.New(t)

	path := regionPath(t, 0, 0)
	writeRegion(t, path, map[[2]int]nbt.Tag{
		{0, 0}: xPosChunk(1),
		{1, 0}: xPosChunk(2),
	})

	r, err := Open(path)
	require.NoError(err)
	before, err := r.Slot(1, 0)
	require.NoError(err)
	require.Equal(uint32(3), before.SectorOffset)

	noise := make([]byte, 3*SectorSize)
	_, err = rand.Read(noise)
	require.NoError(err)
	require.NoError(r.SetChunk(0, 0, nbt.NewCompound("", nbt.NewByteArray("noise", noise))))
	require.NoError(r.WriteAll())

	grown, err := r.Slot(0, 0)
	require.NoError(err)
	require.Equal(uint32(2), grown.SectorOffset)
	require.GreaterOrEqual(grown.SectorCount, uint8(4))

	after, err := r.Slot(1, 0)
	require.NoError(err)
	require.Equal(2+uint32(grown.SectorCount), after.SectorOffset)

	reopened, err := Open(path)
	require.NoError(err)
	tag, err := reopened.ReadChunk(1, 0)
	require.NoError(err)
	require.True(nbt.Equal(xPosChunk(2), tag))
	tag, err = reopened.ReadChunk(0, 0)
	require.NoError(err)
	require.Equal(noise, nbt.FindFirst(tag, "noise").(*nbt.ByteArray).Value)
}

func TestUntouchedChunksKeepTimestamps(t *testing.T) {
	require := require.New(t)

	path := regionPath(t, 0, 0)
	writeRegion(t, path, map[[2]int]nbt.Tag{
		{0, 0}: xPosChunk(1),
		{5, 5}: xPosChunk(2),
	}, WithClock(fixedClock(100)))

	r, err := Open(path, WithClock(fixedClock(200)))
	require.NoError(err)
	require.NoError(r.SetChunk(5, 5, xPosChunk(3)))
	require.NoError(r.WriteAll())

	untouched, err := r.Slot(0, 0)
	require.NoError(err)
	require.Equal(uint32(100), untouched.LastModified)
	touched, err := r.Slot(5, 5)
	require.NoError(err)
	require.Equal(uint32(200), touched.LastModified)
}

func TestFailedWriteLeavesFile(t *testing.T) {
	require := require.New(t)

	path := regionPath(t, 0, 0)
	writeRegion(t, path, map[[2]int]nbt.Tag{{0, 0}: xPosChunk(1)})
	before := readFile(t, path)

	codec := newCountingCodec()
	codec.compressErr = compress.ErrCompression
	r, err := Open(path, WithCodec(codec))
	require.NoError(err)
	require.NoError(r.GenerateChunk(1, 1))

	err = r.WriteAll()
	require.ErrorIs(err, compress.ErrCompression)
	require.Equal(before, readFile(t, path))

	header := r.Header()
	require.Equal(1, header.CountOccupied(), "header is only replaced after a successful write")
}

func TestWriteAllWithoutFile(t *testing.T) {
	require.ErrorIs(t, New(0, 0).WriteAll(), ErrNoSource)
}

func TestOpenEmptyFile(t *testing.T) {
	require := require.New(t)

	path := regionPath(t, 4, 4)
	require.NoError(os.WriteFile(path, nil, 0o644))

	r, err := Open(path)
	require.NoError(err)
	empty := r.Header()
	require.Equal(0, empty.CountOccupied())
	require.Equal(4, r.X)
}

func TestOpenTruncatedHeader(t *testing.T) {
	path := regionPath(t, 0, 0)
	require.NoError(t, os.WriteFile(path, make([]byte, 100), 0o644))

	_, err := Open(path)
	require.Error(t, err)
}

func TestOpenInvalidChunkLength(t *testing.T) {
	path := regionPath(t, 0, 0)
	writeRegion(t, path, map[[2]int]nbt.Tag{{0, 0}: xPosChunk(1)})

	data := readFile(t, path)
	binary.BigEndian.PutUint32(data[HeaderSize:], 0)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err := Open(path)
	require.ErrorIs(t, err, ErrInvalidChunkLength)
}

func TestOpenRejectsCorruptSlots(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(data []byte)
	}{
		{"length past the slot's sectors", func(data []byte) {
			binary.BigEndian.PutUint32(data[HeaderSize:], 0x10000000)
		}},
		{"length one byte too long", func(data []byte) {
			binary.BigEndian.PutUint32(data[HeaderSize:], SectorSize-chunkHeaderSize+2)
		}},
		{"offset inside the header", func(data []byte) {
			binary.BigEndian.PutUint32(data[0:], 1<<8|1)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := regionPath(t, 0, 0)
			writeRegion(t, path, map[[2]int]nbt.Tag{{0, 0}: xPosChunk(1)})

			data := readFile(t, path)
			tt.mutate(data)
			require.NoError(t, os.WriteFile(path, data, 0o644))

			_, err := Open(path)
			require.ErrorIs(t, err, ErrInvalidChunkLength)
		})
	}
}

func TestOpenAcceptsFullSector(t *testing.T) {
	path := regionPath(t, 0, 0)
	writeRegion(t, path, map[[2]int]nbt.Tag{{0, 0}: xPosChunk(1)})

	data := readFile(t, path)
	binary.BigEndian.PutUint32(data[HeaderSize:], SectorSize-chunkHeaderSize+1)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	slot, err := r.Slot(0, 0)
	require.NoError(t, err)
	require.Equal(t, uint32(SectorSize-chunkHeaderSize), slot.ByteLength)
}

func TestOpenRejectsBadName(t *testing.T) {
	_, err := Open("/tmp/level.dat")
	require.ErrorIs(t, err, ErrInvalidPath)
}

func TestOpenReaderAndWriteTo(t *testing.T) {
	require := require.New(t)

	src := New(0, 0)
	require.NoError(src.SetChunk(31, 31, xPosChunk(31)))

	f, err := os.CreateTemp(t.TempDir(), "region")
	require.NoError(err)
	defer f.Close()
	require.NoError(src.WriteTo(f))

	tag, err := src.ReadChunk(31, 31)
	require.NoError(err, "a readable writer becomes the backing data")
	require.True(nbt.Equal(xPosChunk(31), tag))

	data, err := os.ReadFile(f.Name())
	require.NoError(err)
	r, err := OpenReader(0, 0, bytes.NewReader(data))
	require.NoError(err)
	tag, err = r.Chunk(31, 31)
	require.NoError(err)
	require.True(nbt.Equal(xPosChunk(31), tag))
}

func TestWriteToTruncatesLargerFile(t *testing.T) {
	require := require.New(t)

	noise := make([]byte, 3*SectorSize)
	_, err := rand.Read(noise)
	require.NoError(err)

	f, err := os.CreateTemp(t.TempDir(), "region")
	require.NoError(err)
	defer f.Close()

	large := New(0, 0)
	require.NoError(large.SetChunk(0, 0, nbt.NewCompound("", nbt.NewByteArray("noise", noise))))
	require.NoError(large.WriteTo(f))
	info, err := f.Stat()
	require.NoError(err)
	require.Greater(info.Size(), int64(4*SectorSize))

	small := New(0, 0)
	require.NoError(small.SetChunk(1, 0, xPosChunk(1)))
	require.NoError(small.WriteTo(f))

	info, err = f.Stat()
	require.NoError(err)
	require.Equal(int64(3*SectorSize), info.Size())

	data := readFile(t, f.Name())
	r, err := OpenReader(0, 0, bytes.NewReader(data))
	require.NoError(err)
	filled, err := r.IsFilled(0, 0)
	require.NoError(err)
	require.False(filled)
}

func TestEach(t *testing.T) {
	require := require.New(t)

	r := New(0, 0)
	require.NoError(r.SetChunk(2, 0, xPosChunk(2)))
	require.NoError(r.SetChunk(1, 0, xPosChunk(1)))
	require.NoError(r.SetChunk(0, 1, xPosChunk(32)))

	var visited []int32
	err := r.Each(func(x, z int, tag nbt.Tag) error {
		visited = append(visited, nbt.FindFirst(tag, "xPos").(*nbt.Int).Value)
		return nil
	})
	require.NoError(err)
	require.Equal([]int32{1, 2, 32}, visited)

	stop := errors.New("stop")
	require.ErrorIs(r.Each(func(int, int, nbt.Tag) error { return stop }), stop)
}

func TestRegionString(t *testing.T) {
	path := regionPath(t, 0, 0)
	writeRegion(t, path, map[[2]int]nbt.Tag{{0, 0}: xPosChunk(1)}, WithClock(fixedClock(7)))

	r, err := Open(path)
	require.NoError(t, err)
	slot, err := r.Slot(0, 0)
	require.NoError(t, err)

	require.Contains(t, r.String(), "(0, 0): Count: 1/1024\n")
	require.Contains(t, r.String(), "0: [ZLIB] off: 8197, len: ")
	require.Contains(t, slot.String(), "modified: 7")
}

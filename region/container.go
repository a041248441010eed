package region

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/astei/anvil/bytestream"
	"github.com/astei/anvil/compress"
	"github.com/astei/anvil/nbt"
)

// source opens the backing data for one read pass.
type source func() (io.ReadSeekCloser, error)

func fileSource(path string) source {
	return func() (io.ReadSeekCloser, error) {
		return os.Open(path)
	}
}

type nopCloser struct {
	io.ReadSeeker
}

func (nopCloser) Close() error { return nil }

func readerSource(rs io.ReadSeeker) source {
	return func() (io.ReadSeekCloser, error) {
		return nopCloser{rs}, nil
	}
}

// Region is one region file: its coordinates, header and chunk trees. Chunk
// coordinates passed to its methods are relative to the region, 0 <= x, z < 32.
type Region struct {
	X, Z int

	header Header
	cache  *ChunkCache
	source source
	path   string

	codec  compress.Codec
	logger *slog.Logger
	now    func() time.Time
}

func newRegion(x, z int, opts []Option) *Region {
	r := &Region{
		X:      x,
		Z:      z,
		codec:  compress.NewZlibCodec(),
		logger: discardLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// New creates an empty region that is not yet backed by a file.
func New(x, z int, opts ...Option) *Region {
	r := newRegion(x, z, opts)
	r.cache = NewChunkCache(r, &r.header)

	return r
}

// Open reads the header of the region file at path. The region coordinates
// come from the file name, which must look like r.<x>.<z>.mca.
func Open(path string, opts ...Option) (*Region, error) {
	x, z, err := ParseFilename(path)
	if err != nil {
		return nil, err
	}

	r := newRegion(x, z, opts)
	r.path = path
	r.source = fileSource(path)
	if err := r.load(); err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	r.logger.Debug("opened region", "path", path, "x", x, "z", z, "chunks", r.header.CountOccupied())

	return r, nil
}

// OpenReader reads a region from rs. The region keeps rs for later chunk reads
// and never closes it.
func OpenReader(x, z int, rs io.ReadSeeker, opts ...Option) (*Region, error) {
	r := newRegion(x, z, opts)
	r.source = readerSource(rs)
	if err := r.load(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Region) load() error {
	f, err := r.source()
	if err != nil {
		return err
	}
	defer f.Close()

	h, err := readHeader(f)
	if err != nil {
		return err
	}
	r.header = *h
	r.cache = NewChunkCache(r, &r.header)

	return nil
}

// Path returns the backing file, or "" when the region is not file-backed.
func (r *Region) Path() string { return r.path }

// Header returns a copy of the current header.
func (r *Region) Header() Header { return r.header }

// Slot returns the header slot for x, z.
func (r *Region) Slot(x, z int) (Slot, error) {
	index, err := Index(x, z)
	if err != nil {
		return Slot{}, err
	}

	return r.header.slots[index], nil
}

// IsFilled reports whether x, z holds a chunk, either on disk or stored with
// SetChunk or GenerateChunk and awaiting WriteAll.
func (r *Region) IsFilled(x, z int) (bool, error) {
	return r.cache.IsFilled(x, z)
}

// ReadChunk decodes the chunk at x, z from the backing data, bypassing the
// cache. Callers should check IsFilled first; an empty slot yields
// ErrUnfilledChunk.
func (r *Region) ReadChunk(x, z int) (nbt.Tag, error) {
	index, err := Index(x, z)
	if err != nil {
		return nil, err
	}
	slot := r.header.slots[index]
	if slot.Empty() {
		return nil, fmt.Errorf("%w: chunk %d,%d", ErrUnfilledChunk, x, z)
	}

	switch slot.Compression {
	case CompressionZlib:
	case CompressionGzip:
		return nil, fmt.Errorf("%w: chunk %d,%d is %s", ErrUnsupportedCompression, x, z, slot.Compression)
	default:
		return nil, fmt.Errorf("%w: chunk %d,%d has kind %d", ErrUnknownCompression, x, z, byte(slot.Compression))
	}

	payload, err := r.readPayload(slot)
	if err != nil {
		return nil, fmt.Errorf("could not read chunk %d,%d: %w", x, z, err)
	}
	data, err := r.codec.Decompress(payload)
	if err != nil {
		return nil, fmt.Errorf("could not inflate chunk %d,%d: %w", x, z, err)
	}
	tag, err := nbt.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("could not deserialize chunk %d,%d: %w", x, z, err)
	}
	r.logger.Debug("read chunk", "x", x, "z", z, "compressed", len(payload), "bytes", len(data))

	return tag, nil
}

func (r *Region) readPayload(slot Slot) ([]byte, error) {
	if r.source == nil {
		return nil, ErrNoSource
	}
	f, err := r.source()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err = f.Seek(slot.DataOffset(), io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek: %w", err)
	}
	payload := make([]byte, slot.ByteLength)
	if _, err = io.ReadFull(f, payload); err != nil {
		return nil, fmt.Errorf("could not read payload data: %w", err)
	}

	return payload, nil
}

// Chunk returns the chunk tree at x, z, decoding it at most once per Region.
// The returned tree is shared with the region; changes to it are written by
// the next WriteAll.
func (r *Region) Chunk(x, z int) (nbt.Tag, error) {
	return r.cache.Tag(x, z)
}

// SetChunk replaces the tree at x, z. It is written by the next WriteAll.
func (r *Region) SetChunk(x, z int, tag nbt.Tag) error {
	index, err := Index(x, z)
	if err != nil {
		return err
	}
	if tag == nil {
		return fmt.Errorf("%w: nil chunk tag", nbt.ErrInvalidTag)
	}
	r.cache.store(index, tag, true)

	return nil
}

// RestoreChunk stores tag at x, z like SetChunk but keeps modified as its
// timestamp on the next write. A zero modified is replaced by the write time.
func (r *Region) RestoreChunk(x, z int, tag nbt.Tag, modified uint32) error {
	index, err := Index(x, z)
	if err != nil {
		return err
	}
	if tag == nil {
		return fmt.Errorf("%w: nil chunk tag", nbt.ErrInvalidTag)
	}
	r.cache.store(index, tag, false)
	r.header.slots[index].LastModified = modified

	return nil
}

// Each calls fn for every filled chunk in slot order, decoding as needed.
func (r *Region) Each(fn func(x, z int, tag nbt.Tag) error) error {
	for index := range ChunkCount {
		x, z := Coords(index)
		if r.cache.entries[index].state == entryAbsent {
			continue
		}
		tag, err := r.cache.Tag(x, z)
		if err != nil {
			return err
		}
		if err := fn(x, z, tag); err != nil {
			return err
		}
	}

	return nil
}

// preparedChunk is a chunk ready to be written: sub-header, payload and
// padding to a whole number of sectors.
type preparedChunk struct {
	index int
	data  []byte
}

// prepare compresses every filled chunk and lays them out back to back from
// sector 2 in slot order. Nothing is written and the region is not modified.
func (r *Region) prepare() (*Header, []preparedChunk, error) {
	next := &Header{}
	var chunks []preparedChunk
	sector := uint32(headerSectors)
	now := uint32(r.now().Unix())

	for index := range ChunkCount {
		entry := &r.cache.entries[index]
		if entry.state == entryAbsent {
			continue
		}
		x, z := Coords(index)
		tag, err := r.cache.Tag(x, z)
		if err != nil {
			return nil, nil, err
		}
		raw, err := nbt.Marshal(tag)
		if err != nil {
			return nil, nil, fmt.Errorf("could not serialize chunk %d,%d: %w", x, z, err)
		}
		compressed, err := r.codec.Compress(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("could not deflate chunk %d,%d: %w", x, z, err)
		}

		sectors := (len(compressed) + chunkHeaderSize + SectorSize - 1) / SectorSize
		if sectors > maxSectorCount {
			return nil, nil, fmt.Errorf("%w: chunk %d,%d needs %d sectors", ErrInvalidChunkLength, x, z, sectors)
		}

		c := bytestream.NewBigEndian(make([]byte, 0, sectors*SectorSize))
		c.WriteI32(int32(len(compressed) + 1))
		c.WriteU8(byte(CompressionZlib))
		c.WriteBytes(compressed)
		c.WriteBytes(make([]byte, sectors*SectorSize-c.Len()))

		modified := r.header.slots[index].LastModified
		if entry.dirty || modified == 0 {
			modified = now
		}
		next.slots[index] = Slot{
			SectorOffset: sector,
			SectorCount:  uint8(sectors),
			Compression:  CompressionZlib,
			LastModified: modified,
			ByteLength:   uint32(len(compressed)),
		}
		chunks = append(chunks, preparedChunk{index: index, data: c.Bytes()})
		sector += uint32(sectors)
	}

	return next, chunks, nil
}

func writeImage(w io.WriteSeeker, h *Header, chunks []preparedChunk) error {
	if _, err := w.Seek(HeaderSize, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	for _, chunk := range chunks {
		if _, err := w.Write(chunk.data); err != nil {
			return fmt.Errorf("could not write slot %d: %w", chunk.index, err)
		}
	}

	header, err := h.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("could not write header: %w", err)
	}

	return nil
}

func (r *Region) commit(h *Header, src source, path string) {
	r.header = *h
	r.source = src
	r.path = path
	r.cache.clean()
}

// WriteAll rewrites the region's backing file with every filled chunk.
// Chunks are packed sequentially from sector 2; freed sectors are not reused.
// All chunks are compressed before the file is touched, so a failure leaves
// the previous contents in place.
func (r *Region) WriteAll() error {
	if r.path == "" {
		return ErrNoSource
	}

	return r.WriteFile(r.path)
}

// WriteFile writes the region to path and makes path its backing file.
func (r *Region) WriteFile(path string) (err error) {
	h, chunks, err := r.prepare()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err = writeImage(f, h, chunks); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	r.commit(h, fileSource(path), path)
	r.logger.Info("wrote region", "path", path, "chunks", len(chunks), "sectors", fileSectors(chunks))

	return nil
}

// WriteTo writes the region to w. If w can also be read and seeked it becomes
// the region's backing data; otherwise the region keeps its trees in memory
// and ReadChunk reports ErrNoSource. When w has a Truncate method, such as an
// *os.File, anything past the new image is cut off; other writers keep their
// old tail.
func (r *Region) WriteTo(w io.WriteSeeker) error {
	h, chunks, err := r.prepare()
	if err != nil {
		return err
	}
	if err := writeImage(w, h, chunks); err != nil {
		return err
	}
	if t, ok := w.(interface{ Truncate(size int64) error }); ok {
		if err := t.Truncate(int64(fileSectors(chunks)) * SectorSize); err != nil {
			return fmt.Errorf("could not truncate: %w", err)
		}
	}

	var src source
	if rs, ok := w.(io.ReadSeeker); ok {
		src = readerSource(rs)
	}
	r.commit(h, src, "")

	return nil
}

func fileSectors(chunks []preparedChunk) int {
	n := headerSectors
	for _, c := range chunks {
		n += len(c.data) / SectorSize
	}

	return n
}

func (r *Region) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "(%d, %d): %s\n", r.X, r.Z, r.header.String())
	for i, slot := range r.header.slots {
		if slot.Empty() {
			continue
		}
		fmt.Fprintf(&sb, "%d: %s\n", i, slot)
	}

	return sb.String()
}

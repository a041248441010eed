// Package snapshot exports the chunks of a region into a single
// zstd-compressed stream and restores regions from it.
//
// A snapshot starts with a fixed header:
//
//	magic        u16  0xA7B1
//	version      u8   1
//	regionX      i32
//	regionZ      i32
//	compressed   u32  length of the zstd body
//	uncompressed u32  length of the body once inflated
//
// The body holds a record count (u32) followed by one record per filled slot
// in slot order: slot index (u16), timestamp (u32), NBT length (u32), the NBT
// bytes and the xxhash64 of those bytes (u64). Everything is big-endian.
package snapshot

import (
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/astei/anvil/bytestream"
	"github.com/astei/anvil/compress"
	"github.com/astei/anvil/nbt"
	"github.com/astei/anvil/region"
)

const (
	Magic   uint16 = 0xA7B1
	Version uint8  = 1

	headerSize = 2 + 1 + 4 + 4 + 4 + 4
)

var (
	ErrInvalidMagic       = errors.New("snapshot: invalid magic")
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")
	ErrChecksumMismatch   = errors.New("snapshot: checksum mismatch")
)

// Entry is one chunk of a snapshot.
type Entry struct {
	Index    int
	Modified uint32
	Tag      nbt.Tag
}

// Snapshot is the decoded content of a region at the time it was captured.
type Snapshot struct {
	X, Z    int
	Entries []Entry
}

// Capture decodes every filled chunk of r.
func Capture(r *region.Region) (*Snapshot, error) {
	s := &Snapshot{X: r.X, Z: r.Z}
	err := r.Each(func(x, z int, tag nbt.Tag) error {
		slot, err := r.Slot(x, z)
		if err != nil {
			return err
		}
		index, _ := region.Index(x, z)
		s.Entries = append(s.Entries, Entry{Index: index, Modified: slot.LastModified, Tag: tag})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: capture region %d,%d: %w", r.X, r.Z, err)
	}

	return s, nil
}

// Write captures r and writes it to w.
func Write(w io.Writer, r *region.Region) error {
	s, err := Capture(r)
	if err != nil {
		return err
	}
	_, err = s.WriteTo(w)

	return err
}

// WriteTo encodes the snapshot to w.
func (s *Snapshot) WriteTo(w io.Writer) (int64, error) {
	body := bytestream.NewBigEndian(nil)
	body.WriteU32(uint32(len(s.Entries)))
	for _, e := range s.Entries {
		if e.Index < 0 || e.Index >= region.ChunkCount {
			return 0, fmt.Errorf("%w: slot %d", region.ErrIndexOutOfRange, e.Index)
		}
		raw, err := nbt.Marshal(e.Tag)
		if err != nil {
			return 0, fmt.Errorf("snapshot: slot %d: %w", e.Index, err)
		}
		body.WriteU16(uint16(e.Index))
		body.WriteU32(e.Modified)
		body.WriteU32(uint32(len(raw)))
		body.WriteBytes(raw)
		body.WriteU64(xxhash.Sum64(raw))
	}

	compressed, err := compress.NewZstdCodec().Compress(body.Bytes())
	if err != nil {
		return 0, err
	}

	out := bytestream.NewBigEndian(make([]byte, 0, headerSize+len(compressed)))
	out.WriteU16(Magic)
	out.WriteU8(Version)
	out.WriteI32(int32(s.X))
	out.WriteI32(int32(s.Z))
	out.WriteU32(uint32(len(compressed)))
	out.WriteU32(uint32(body.Len()))
	out.WriteBytes(compressed)

	n, err := w.Write(out.Bytes())

	return int64(n), err
}

// Read decodes a snapshot from r. Every record's checksum is verified.
func Read(r io.Reader) (*Snapshot, error) {
	raw := make([]byte, headerSize)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("snapshot: read header: %w", err)
	}
	head := bytestream.NewBigEndian(raw)
	magic, _ := head.ReadU16()
	if magic != Magic {
		return nil, fmt.Errorf("%w: %#04x", ErrInvalidMagic, magic)
	}
	version, _ := head.ReadU8()
	if version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	x, _ := head.ReadI32()
	z, _ := head.ReadI32()
	compressedLen, _ := head.ReadU32()
	uncompressedLen, _ := head.ReadU32()

	compressed, err := io.ReadAll(io.LimitReader(r, int64(compressedLen)))
	if err != nil {
		return nil, fmt.Errorf("snapshot: read body: %w", err)
	}
	if len(compressed) != int(compressedLen) {
		return nil, fmt.Errorf("snapshot: body is %d bytes, want %d: %w", len(compressed), compressedLen, io.ErrUnexpectedEOF)
	}
	data, err := compress.NewZstdCodec().Decompress(compressed)
	if err != nil {
		return nil, err
	}
	if len(data) != int(uncompressedLen) {
		return nil, fmt.Errorf("snapshot: body inflates to %d bytes, want %d: %w", len(data), uncompressedLen, bytestream.ErrEndOfStream)
	}

	s := &Snapshot{X: int(x), Z: int(z)}
	if err := s.decodeBody(bytestream.NewBigEndian(data)); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Snapshot) decodeBody(c *bytestream.Cursor) error {
	count, err := c.ReadU32()
	if err != nil {
		return fmt.Errorf("snapshot: record count: %w", err)
	}
	for i := range int(count) {
		e, err := decodeEntry(c)
		if err != nil {
			return fmt.Errorf("snapshot: record %d: %w", i, err)
		}
		s.Entries = append(s.Entries, e)
	}

	return nil
}

func decodeEntry(c *bytestream.Cursor) (Entry, error) {
	index, err := c.ReadU16()
	if err != nil {
		return Entry{}, err
	}
	if int(index) >= region.ChunkCount {
		return Entry{}, fmt.Errorf("%w: slot %d", region.ErrIndexOutOfRange, index)
	}
	modified, err := c.ReadU32()
	if err != nil {
		return Entry{}, err
	}
	length, err := c.ReadU32()
	if err != nil {
		return Entry{}, err
	}
	raw, err := c.ReadBytes(int(length))
	if err != nil {
		return Entry{}, err
	}
	sum, err := c.ReadU64()
	if err != nil {
		return Entry{}, err
	}
	if got := xxhash.Sum64(raw); got != sum {
		return Entry{}, fmt.Errorf("%w: slot %d has %#016x, recorded %#016x", ErrChecksumMismatch, index, got, sum)
	}
	tag, err := nbt.Unmarshal(raw)
	if err != nil {
		return Entry{}, err
	}

	return Entry{Index: int(index), Modified: modified, Tag: tag}, nil
}

// Restore builds an in-memory region holding the snapshot's chunks. Recorded
// timestamps are kept when the region is written.
func (s *Snapshot) Restore(opts ...region.Option) (*region.Region, error) {
	r := region.New(s.X, s.Z, opts...)
	for _, e := range s.Entries {
		if e.Index < 0 || e.Index >= region.ChunkCount {
			return nil, fmt.Errorf("%w: slot %d", region.ErrIndexOutOfRange, e.Index)
		}
		x, z := region.Coords(e.Index)
		if err := r.RestoreChunk(x, z, e.Tag, e.Modified); err != nil {
			return nil, err
		}
	}

	return r, nil
}

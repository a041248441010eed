package region

import (
	"errors"
	"fmt"
	"io"

	"github.com/astei/anvil/bytestream"
)

// Header is the table of 1024 slots at the start of a region file.
type Header struct {
	slots [ChunkCount]Slot
}

// Slot returns the slot at index.
func (h *Header) Slot(index int) (Slot, error) {
	if index < 0 || index >= ChunkCount {
		return Slot{}, fmt.Errorf("%w: slot %d", ErrIndexOutOfRange, index)
	}

	return h.slots[index], nil
}

// SetSlot replaces the slot at index.
func (h *Header) SetSlot(index int, slot Slot) error {
	if index < 0 || index >= ChunkCount {
		return fmt.Errorf("%w: slot %d", ErrIndexOutOfRange, index)
	}
	h.slots[index] = slot

	return nil
}

// CountOccupied returns the number of non-empty slots.
func (h *Header) CountOccupied() int {
	count := 0
	for _, s := range h.slots {
		if !s.Empty() {
			count++
		}
	}

	return count
}

func (h *Header) String() string {
	return fmt.Sprintf("Count: %d/%d", h.CountOccupied(), ChunkCount)
}

// MarshalBinary returns the 8192-byte on-disk form: offset words followed by
// timestamps, big-endian.
func (h *Header) MarshalBinary() ([]byte, error) {
	c := bytestream.NewBigEndian(make([]byte, 0, HeaderSize))
	for _, s := range h.slots {
		c.WriteU32(s.offsetWord())
	}
	for _, s := range h.slots {
		c.WriteU32(s.LastModified)
	}

	return c.Bytes(), nil
}

// UnmarshalBinary parses the offset and timestamp tables. Compression kind and
// byte length live in each chunk's sub-header and are left zero.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("anvil: header is %d bytes, want %d: %w", len(data), HeaderSize, bytestream.ErrEndOfStream)
	}
	c := bytestream.NewBigEndian(data[:HeaderSize])
	var words [ChunkCount]uint32
	for i := range words {
		words[i], _ = c.ReadU32()
	}
	for i := range h.slots {
		modified, _ := c.ReadU32()
		h.slots[i] = slotFromWord(words[i], modified)
	}

	return nil
}

// readHeader loads the header tables and then visits every occupied slot to
// read its length and compression sub-header. An empty source is an empty
// region.
func readHeader(source io.ReadSeeker) (*Header, error) {
	h := &Header{}
	if _, err := source.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek: %w", err)
	}

	raw := make([]byte, HeaderSize)
	if _, err := io.ReadFull(source, raw); err != nil {
		if errors.Is(err, io.EOF) {
			return h, nil
		}
		return nil, fmt.Errorf("could not read header: %w", err)
	}
	if err := h.UnmarshalBinary(raw); err != nil {
		return nil, err
	}

	sub := make([]byte, chunkHeaderSize)
	for i := range h.slots {
		slot := &h.slots[i]
		if slot.Empty() {
			continue
		}
		if slot.SectorOffset < headerSectors {
			return nil, fmt.Errorf("%w: slot %d starts in the header at sector %d", ErrInvalidChunkLength, i, slot.SectorOffset)
		}
		if _, err := source.Seek(int64(slot.SectorOffset)*SectorSize, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to seek to slot %d: %w", i, err)
		}
		if _, err := io.ReadFull(source, sub); err != nil {
			return nil, fmt.Errorf("could not read payload header of slot %d: %w", i, err)
		}

		c := bytestream.NewBigEndian(sub)
		length, _ := c.ReadI32()
		kind, _ := c.ReadU8()
		if length < 1 || int(length)-1 > int(slot.SectorCount)*SectorSize-chunkHeaderSize {
			return nil, fmt.Errorf("%w: slot %d declares %d bytes in %d sectors", ErrInvalidChunkLength, i, length, slot.SectorCount)
		}
		slot.ByteLength = uint32(length - 1)
		slot.Compression = CompressionKind(kind)
	}

	return h, nil
}

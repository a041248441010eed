package region

import (
	"fmt"

	"github.com/astei/anvil/nbt"
)

type entryState uint8

const (
	// entryAbsent: the header slot is empty and nothing was stored.
	entryAbsent entryState = iota
	// entryFilled: the slot holds a chunk that has not been decoded yet.
	entryFilled
	// entryDecoded: the tag tree is materialized.
	entryDecoded
)

type cacheEntry struct {
	state entryState
	tag   nbt.Tag
	// dirty marks trees stored by the caller that are not yet on disk.
	dirty bool
}

// ChunkReader decodes a chunk straight from its source.
type ChunkReader interface {
	ReadChunk(x, z int) (nbt.Tag, error)
}

// ChunkCache materializes chunk trees on first access and keeps them for its
// lifetime. Each filled slot is decoded at most once; there is no eviction.
type ChunkCache struct {
	reader  ChunkReader
	entries [ChunkCount]cacheEntry
}

// NewChunkCache creates a cache whose filled slots are those occupied in h.
func NewChunkCache(reader ChunkReader, h *Header) *ChunkCache {
	c := &ChunkCache{reader: reader}
	for i, slot := range h.slots {
		if !slot.Empty() {
			c.entries[i].state = entryFilled
		}
	}

	return c
}

// IsFilled reports whether the slot holds a chunk, on disk or pending write.
func (c *ChunkCache) IsFilled(x, z int) (bool, error) {
	index, err := Index(x, z)
	if err != nil {
		return false, err
	}

	return c.entries[index].state != entryAbsent, nil
}

// Tag returns the chunk tree at x, z, decoding it on first access.
func (c *ChunkCache) Tag(x, z int) (nbt.Tag, error) {
	index, err := Index(x, z)
	if err != nil {
		return nil, err
	}

	entry := &c.entries[index]
	switch entry.state {
	case entryDecoded:
		return entry.tag, nil
	case entryFilled:
		tag, err := c.reader.ReadChunk(x, z)
		if err != nil {
			return nil, err
		}
		entry.tag = tag
		entry.state = entryDecoded
		return tag, nil
	default:
		return nil, fmt.Errorf("%w: chunk %d,%d", ErrUnfilledChunk, x, z)
	}
}

// Decoded reports whether x, z has already been materialized.
func (c *ChunkCache) Decoded(x, z int) bool {
	index, err := Index(x, z)
	if err != nil {
		return false
	}

	return c.entries[index].state == entryDecoded
}

func (c *ChunkCache) store(index int, tag nbt.Tag, dirty bool) {
	c.entries[index] = cacheEntry{state: entryDecoded, tag: tag, dirty: dirty}
}

func (c *ChunkCache) clean() {
	for i := range c.entries {
		c.entries[i].dirty = false
	}
}

package region

import "github.com/astei/anvil/nbt"

// Dimensions of a chunk column.
const (
	BlockWidth  = 16
	BlockArea   = BlockWidth * BlockWidth
	BlockHeight = 256
)

// GenerateChunk replaces the chunk at x, z with an empty skeleton: a root
// compound holding a Level compound with no entities or sections, zeroed
// biomes and height map, and the chunk's absolute xPos and zPos.
func (r *Region) GenerateChunk(x, z int) error {
	if _, err := Index(x, z); err != nil {
		return err
	}

	return r.SetChunk(x, z, NewChunkTag(r.X*ChunkWidth+x, r.Z*ChunkWidth+z))
}

// NewChunkTag builds the skeleton used by GenerateChunk for the chunk at
// absolute chunk coordinates chunkX, chunkZ.
func NewChunkTag(chunkX, chunkZ int) *nbt.Compound {
	level := nbt.NewCompound("Level",
		nbt.NewList("Entities", nbt.KindCompound),
		nbt.NewList("TileEntities", nbt.KindCompound),
		nbt.NewList("Sections", nbt.KindCompound),
		nbt.NewByteArray("Biomes", make([]byte, BlockArea)),
		nbt.NewLong("LastUpdate", 0),
		nbt.NewInt("xPos", int32(chunkX)),
		nbt.NewInt("zPos", int32(chunkZ)),
		nbt.NewByte("TerrainPopulated", 1),
		nbt.NewIntArray("HeightMap", make([]int32, BlockArea)),
	)

	return nbt.NewCompound("", level)
}

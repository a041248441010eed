package region

import (
	"fmt"

	"github.com/astei/anvil/nbt"
)

// ChunkSummary is the handful of fields tools need from a chunk without
// walking its full tree.
type ChunkSummary struct {
	X, Z         int
	Sections     int
	Entities     int
	TileEntities int
}

// Summarize extracts a ChunkSummary from a chunk tree. Missing fields are zero.
func Summarize(root nbt.Tag) ChunkSummary {
	var s ChunkSummary
	if t, ok := nbt.FindFirst(root, "xPos").(*nbt.Int); ok {
		s.X = int(t.Value)
	}
	if t, ok := nbt.FindFirst(root, "zPos").(*nbt.Int); ok {
		s.Z = int(t.Value)
	}
	if t, ok := nbt.FindFirst(root, "Sections").(*nbt.List); ok {
		s.Sections = t.Len()
	}
	if t, ok := nbt.FindFirst(root, "Entities").(*nbt.List); ok {
		s.Entities = t.Len()
	}
	if t, ok := nbt.FindFirst(root, "TileEntities").(*nbt.List); ok {
		s.TileEntities = t.Len()
	}

	return s
}

func columnIndex(bx, bz int) (int, error) {
	if bx < 0 || bx >= BlockWidth || bz < 0 || bz >= BlockWidth {
		return 0, fmt.Errorf("%w: block %d,%d", ErrIndexOutOfRange, bx, bz)
	}

	return bz*BlockWidth + bx, nil
}

// BiomeAt returns the biome id of block column bx, bz in chunk x, z. Chunks
// without biome data read as zero.
func (r *Region) BiomeAt(x, z, bx, bz int) (int8, error) {
	pos, err := columnIndex(bx, bz)
	if err != nil {
		return 0, err
	}
	biomes, err := r.byteArray(x, z, "Biomes")
	if err != nil || biomes == nil {
		return 0, err
	}

	return biomes.At(pos), nil
}

// Biomes returns the biome array of chunk x, z, or nil when it has none.
func (r *Region) Biomes(x, z int) ([]byte, error) {
	biomes, err := r.byteArray(x, z, "Biomes")
	if err != nil || biomes == nil {
		return nil, err
	}

	return biomes.Value, nil
}

// HeightAt returns the height map value of block column bx, bz in chunk x, z.
func (r *Region) HeightAt(x, z, bx, bz int) (int32, error) {
	pos, err := columnIndex(bx, bz)
	if err != nil {
		return 0, err
	}
	heights, err := r.intArray(x, z, "HeightMap")
	if err != nil || heights == nil {
		return 0, err
	}

	return heights.At(pos), nil
}

// HeightMap returns the height map of chunk x, z, or nil when it has none.
func (r *Region) HeightMap(x, z int) ([]int32, error) {
	heights, err := r.intArray(x, z, "HeightMap")
	if err != nil || heights == nil {
		return nil, err
	}

	return heights.Value, nil
}

// BlockAt returns the block id at bx, by, bz within chunk x, z. Sections that
// are absent read as air (zero).
func (r *Region) BlockAt(x, z, bx, by, bz int) (int, error) {
	if _, err := columnIndex(bx, bz); err != nil {
		return 0, err
	}
	if by < 0 || by >= BlockHeight {
		return 0, fmt.Errorf("%w: block height %d", ErrIndexOutOfRange, by)
	}
	sections, err := r.sectionBlocks(x, z)
	if err != nil {
		return 0, err
	}
	section := by / BlockWidth
	if section >= len(sections) {
		return 0, nil
	}
	pos := ((by%BlockWidth)*BlockWidth+bz)*BlockWidth + bx

	return int(uint8(sections[section].At(pos))), nil
}

// Blocks returns the block ids of every section of chunk x, z, bottom section
// first.
func (r *Region) Blocks(x, z int) ([]int, error) {
	sections, err := r.sectionBlocks(x, z)
	if err != nil {
		return nil, err
	}
	var blocks []int
	for _, section := range sections {
		for _, b := range section.Value {
			blocks = append(blocks, int(b))
		}
	}

	return blocks, nil
}

func (r *Region) sectionBlocks(x, z int) ([]*nbt.ByteArray, error) {
	root, err := r.Chunk(x, z)
	if err != nil {
		return nil, err
	}
	var sections []*nbt.ByteArray
	for _, t := range nbt.FindByName(root, "Blocks") {
		if b, ok := t.(*nbt.ByteArray); ok {
			sections = append(sections, b)
		}
	}

	return sections, nil
}

func (r *Region) byteArray(x, z int, name string) (*nbt.ByteArray, error) {
	root, err := r.Chunk(x, z)
	if err != nil {
		return nil, err
	}
	t, _ := nbt.FindFirst(root, name).(*nbt.ByteArray)

	return t, nil
}

func (r *Region) intArray(x, z int, name string) (*nbt.IntArray, error) {
	root, err := r.Chunk(x, z)
	if err != nil {
		return nil, err
	}
	t, _ := nbt.FindFirst(root, name).(*nbt.IntArray)

	return t, nil
}

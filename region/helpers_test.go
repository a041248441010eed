package region

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/astei/anvil/compress"
	"github.com/astei/anvil/nbt"
	"github.com/stretchr/testify/require"
)

// countingCodec wraps the zlib codec and counts calls.
type countingCodec struct {
	inner        compress.Codec
	compressed   int
	decompressed int
	compressErr  error
}

func newCountingCodec() *countingCodec {
	return &countingCodec{inner: compress.NewZlibCodec()}
}

func (c *countingCodec) Compress(data []byte) ([]byte, error) {
	c.compressed++
	if c.compressErr != nil {
		return nil, c.compressErr
	}

	return c.inner.Compress(data)
}

func (c *countingCodec) Decompress(data []byte) ([]byte, error) {
	c.decompressed++
	return c.inner.Decompress(data)
}

func fixedClock(sec int64) func() time.Time {
	return func() time.Time { return time.Unix(sec, 0) }
}

func regionPath(t *testing.T, x, z int) string {
	t.Helper()
	return filepath.Join(t.TempDir(), Filename(x, z))
}

func xPosChunk(v int32) *nbt.Compound {
	return nbt.NewCompound("", nbt.NewInt("xPos", v))
}

// writeRegion stores tags at the given slots and writes the region to path.
func writeRegion(t *testing.T, path string, tags map[[2]int]nbt.Tag, opts ...Option) {
	t.Helper()
	x, z, err := ParseFilename(path)
	require.NoError(t, err)

	r := New(x, z, opts...)
	for coord, tag := range tags {
		require.NoError(t, r.SetChunk(coord[0], coord[1], tag))
	}
	require.NoError(t, r.WriteFile(path))
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return data
}

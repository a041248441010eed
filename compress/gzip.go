package compress

import (
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"
)

var gzipWriterPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(nil)
	},
}

// GzipCodec handles standalone NBT documents such as level.dat. Region chunks
// flagged as gzip are rejected by the region reader and never reach it.
type GzipCodec struct{}

var _ Codec = (*GzipCodec)(nil)

func NewGzipCodec() GzipCodec {
	return GzipCodec{}
}

func (c GzipCodec) Compress(data []byte) ([]byte, error) {
	var out bytes.Buffer
	w, _ := gzipWriterPool.Get().(*gzip.Writer)
	defer gzipWriterPool.Put(w)

	w.Reset(&out)
	if _, err := w.Write(data); err != nil {
		return nil, wrapError("compress", TypeGzip, err)
	}
	if err := w.Close(); err != nil {
		return nil, wrapError("compress", TypeGzip, err)
	}

	return out.Bytes(), nil
}

func (c GzipCodec) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, wrapError("decompress", TypeGzip, err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, wrapError("decompress", TypeGzip, err)
	}

	return out, nil
}

package compress

import (
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
)

// zlibWriterPool reuses writers; Reset rebinds them to a fresh buffer.
var zlibWriterPool = sync.Pool{
	New: func() any {
		return zlib.NewWriter(nil)
	},
}

// ZlibCodec is the codec of region chunks (compression kind 2).
type ZlibCodec struct{}

var _ Codec = (*ZlibCodec)(nil)

func NewZlibCodec() ZlibCodec {
	return ZlibCodec{}
}

func (c ZlibCodec) Compress(data []byte) ([]byte, error) {
	var out bytes.Buffer
	w, _ := zlibWriterPool.Get().(*zlib.Writer)
	defer zlibWriterPool.Put(w)

	w.Reset(&out)
	if _, err := w.Write(data); err != nil {
		return nil, wrapError("compress", TypeZlib, err)
	}
	if err := w.Close(); err != nil {
		return nil, wrapError("compress", TypeZlib, err)
	}

	return out.Bytes(), nil
}

func (c ZlibCodec) Decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, wrapError("decompress", TypeZlib, err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, wrapError("decompress", TypeZlib, err)
	}

	return out, nil
}

package compress

import (
	"errors"
	"fmt"
)

// ErrCompression reports that a codec could not compress or decompress data.
var ErrCompression = errors.New("compress: compression failure")

// Compressor compresses a complete buffer.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses Compressor.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec is both a Compressor and a Decompressor.
type Codec interface {
	Compressor
	Decompressor
}

// Type names a codec. The values for Gzip and Zlib are the compression kind
// bytes of region chunk headers.
type Type uint8

const (
	TypeGzip Type = 0x1
	TypeZlib Type = 0x2
	TypeZstd Type = 0x3
)

func (t Type) String() string {
	switch t {
	case TypeGzip:
		return "Gzip"
	case TypeZlib:
		return "Zlib"
	case TypeZstd:
		return "Zstd"
	default:
		return "Unknown"
	}
}

var builtinCodecs = map[Type]Codec{
	TypeGzip: NewGzipCodec(),
	TypeZlib: NewZlibCodec(),
	TypeZstd: NewZstdCodec(),
}

// GetCodec returns the shared codec for t.
func GetCodec(t Type) (Codec, error) {
	if codec, ok := builtinCodecs[t]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", t)
}

func wrapError(op string, t Type, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrCompression, t, op, err)
}

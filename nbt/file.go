package nbt

import (
	"fmt"
	"io"

	"github.com/astei/anvil/compress"
)

// ReadGzip decodes a gzip-compressed NBT document such as level.dat.
func ReadGzip(r io.Reader) (Tag, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("nbt: read document: %w", err)
	}
	data, err := compress.NewGzipCodec().Decompress(raw)
	if err != nil {
		return nil, err
	}

	return Unmarshal(data)
}

// WriteGzip encodes t as a gzip-compressed NBT document.
func WriteGzip(w io.Writer, t Tag) error {
	data, err := Marshal(t)
	if err != nil {
		return err
	}
	packed, err := compress.NewGzipCodec().Compress(data)
	if err != nil {
		return err
	}
	if _, err = w.Write(packed); err != nil {
		return fmt.Errorf("nbt: write document: %w", err)
	}

	return nil
}

// Package compress provides the byte-level compression services used by the
// region and snapshot formats.
//
// Every codec implements Codec and is safe for concurrent use; encoder state
// is pooled internally. Failures are reported wrapped in ErrCompression so
// callers can tell a compression fault apart from a format error:
//
//	codec := compress.NewZlibCodec()
//	packed, err := codec.Compress(data)
//	if errors.Is(err, compress.ErrCompression) {
//		...
//	}
package compress

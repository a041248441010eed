package region

import (
	"io"
	"log/slog"
	"time"

	"github.com/astei/anvil/compress"
)

// Option configures a Region.
type Option func(*Region)

// WithCodec sets the codec used for zlib chunk payloads.
func WithCodec(codec compress.Codec) Option {
	return func(r *Region) {
		r.codec = codec
	}
}

// WithLogger sets the logger. Regions log nothing by default.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Region) {
		r.logger = logger
	}
}

// WithClock sets the time source for the timestamps of rewritten chunks.
func WithClock(now func() time.Time) Option {
	return func(r *Region) {
		r.now = now
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

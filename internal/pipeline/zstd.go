package pipeline

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

type zstdDecoder struct{ *replayCore }

func newZstdDecoder() Decoder {
	return zstdDecoder{newReplayCore(func(r io.Reader) (io.Reader, error) {
		d, err := zstd.NewReader(r,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(true))
		if err != nil {
			return nil, err
		}
		return zstdReadCloser{d}, nil
	})}
}

// zstdReadCloser adapts *zstd.Decoder's Close (no return value) to
// io.Closer so decodeOnce's generic close-on-return-path applies here too.
type zstdReadCloser struct{ d *zstd.Decoder }

func (z zstdReadCloser) Read(p []byte) (int, error) { return z.d.Read(p) }

func (z zstdReadCloser) Close() error {
	z.d.Close()
	return nil
}

package pipeline

import (
	"io"

	"github.com/andybalholm/brotli"
)

type brotliDecoder struct{ *replayCore }

func newBrotliDecoder() Decoder {
	return brotliDecoder{newReplayCore(func(r io.Reader) (io.Reader, error) {
		return brotli.NewReader(r), nil
	})}
}

package pipeline

import (
	"compress/flate"
	"io"
)

type deflateDecoder struct{ *replayCore }

func newDeflateDecoder() Decoder {
	return deflateDecoder{newReplayCore(func(r io.Reader) (io.Reader, error) {
		return flate.NewReader(r), nil
	})}
}

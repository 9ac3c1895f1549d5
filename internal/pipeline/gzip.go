package pipeline

import (
	"compress/gzip"
	"io"
)

type gzipDecoder struct{ *replayCore }

func newGzipDecoder() Decoder {
	return gzipDecoder{newReplayCore(func(r io.Reader) (io.Reader, error) {
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		// One member per response body; trailing bytes after it are
		// never a second gzip member as far as this pipeline is
		// concerned, they're either nothing or trailing garbage.
		gr.Multistream(false)
		return gr, nil
	})}
}

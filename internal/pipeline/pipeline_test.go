package pipeline

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"io"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, plain []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(plain)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func deflateBytes(t *testing.T, plain []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	require.NoError(t, err)
	_, err = w.Write(plain)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func brotliBytes(t *testing.T, plain []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	_, err := w.Write(plain)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstdBytes(t *testing.T, plain []byte) []byte {
	t.Helper()
	w, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	return w.EncodeAll(plain, nil)
}

// feed pushes compressed in chunkSize-sized pieces (1 means byte-at-a-time)
// through p, followed by an End frame, and returns the concatenation of
// every decoded fragment plus the final error, if any.
func feed(p *Pipeline, compressed []byte, chunkSize int) ([]byte, error) {
	var out []byte
	for len(compressed) > 0 {
		n := chunkSize
		if n > len(compressed) {
			n = len(compressed)
		}
		chunk, rest := compressed[:n], compressed[n:]
		compressed = rest
		decoded, err := p.Feed(DataFrame(chunk))
		out = append(out, decoded...)
		if err != nil {
			return out, err
		}
	}
	decoded, err := p.Feed(EndFrame())
	out = append(out, decoded...)
	return out, err
}

func TestFragmentationInvariance(t *testing.T) {
	plain := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 500)

	cases := []struct {
		encoding   string
		compressed []byte
	}{
		{"gzip", gzipBytes(t, plain)},
		{"deflate", deflateBytes(t, plain)},
		{"br", brotliBytes(t, plain)},
		{"zstd", zstdBytes(t, plain)},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.encoding, func(t *testing.T) {
			for _, chunkSize := range []int{1, 3, 4096, len(tc.compressed)} {
				p := New(tc.encoding)
				out, err := feed(p, append([]byte(nil), tc.compressed...), chunkSize)
				require.NoError(t, err, "chunkSize=%d", chunkSize)
				assert.Equal(t, plain, out, "chunkSize=%d", chunkSize)
				assert.Equal(t, StateDone, p.State())
			}
		})
	}
}

func TestTrailingGarbageDetected(t *testing.T) {
	plain := []byte("hello, world")
	compressed := gzipBytes(t, plain)
	withGarbage := append(append([]byte(nil), compressed...), "garbage"...)

	p := New("gzip")
	_, err := feed(p, withGarbage, 1)
	require.ErrorIs(t, err, ErrTrailingData)
	assert.Equal(t, StateError, p.State())
}

func TestTruncatedStreamSurfacesAtFinish(t *testing.T) {
	plain := bytes.Repeat([]byte("x"), 10000)
	compressed := gzipBytes(t, plain)
	truncated := compressed[:len(compressed)-5]

	p := New("gzip")
	_, err := feed(p, truncated, 4096)
	require.Error(t, err)
}

func TestUnknownEncodingPassesThrough(t *testing.T) {
	raw := []byte("not actually compressed")
	p := New("identity")
	out, err := feed(p, raw, 1)
	require.NoError(t, err)
	assert.Equal(t, raw, out)
	assert.Equal(t, StateDone, p.State())
}

func TestEmptyContentEncodingPassesThrough(t *testing.T) {
	raw := []byte("plain text body")
	p := New("")
	out, err := feed(p, raw, 7)
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestMultiTokenDecodedInReverseOrder(t *testing.T) {
	plain := bytes.Repeat([]byte("layered payload "), 200)
	// Content-Encoding: gzip, br means gzip applied first, then br.
	// Decoding must undo br first, then gzip.
	gzipped := gzipBytes(t, plain)
	doubled := brotliBytes(t, gzipped)

	p := New("gzip, br")
	out, err := feed(p, doubled, 97)
	require.NoError(t, err)
	assert.Equal(t, plain, out)
}

// A body that ends before the decoder ever reaches a clean end of stream
// is truncated input, even if zero bytes arrived. HEAD responses never
// reach a Pipeline at all; the response assembler short-circuits them
// before decoding is ever considered.
func TestEmptyBodyWithDeclaredEncodingIsTruncated(t *testing.T) {
	p := New("zstd")
	_, err := p.Feed(EndFrame())
	require.Error(t, err)
	assert.Equal(t, StateError, p.State())
}

func TestTransportErrorFailsPipeline(t *testing.T) {
	p := New("gzip")
	boom := io.ErrClosedPipe
	_, err := p.Feed(ErrFrame(boom))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StateError, p.State())

	// Once failed, further frames just replay the same error.
	_, err = p.Feed(DataFrame([]byte("x")))
	require.ErrorIs(t, err, boom)
}

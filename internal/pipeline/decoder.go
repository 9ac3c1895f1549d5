// Package pipeline implements the content-decoding state machine: it
// turns a stream of transport Body Frames plus a selected Content-Encoding
// into a stream of decoded bytes, byte-identical no matter how the
// compressed stream was fragmented on arrival, and it flags any bytes left
// over once the compressed frame has logically ended.
package pipeline

import (
	"errors"
	"io"
)

// ErrTrailingData is the decoder-level error produced when bytes arrive
// after the compressed stream's logical end.
var ErrTrailingData = errors.New("pipeline: data follows the end of the compressed stream")

// Decoder is the push-based primitive every content-encoding implements.
// Push feeds it the next chunk of compressed bytes and returns whatever
// newly-decoded bytes that chunk makes available, plus whether the
// compressed stream has reached its logical end (eos). Finish is called
// once the transport reports the body itself has ended; it reports
// whether the decoder ever reached a clean end of stream.
type Decoder interface {
	Push(chunk []byte) (decoded []byte, eos bool, err error)
	Finish() error
}

// replayCore implements the push/eos bookkeeping shared by every decoder.
// Compression formats are a pure function of their input prefix, so each
// Push re-decodes everything accumulated so far from byte zero and emits
// only the bytes beyond what was already returned — the result is
// identical regardless of how the caller chunked the input, including
// 1-byte-at-a-time delivery.
type replayCore struct {
	accum   []byte
	emitted int
	eosAt   int // -1 until a decode attempt reaches a clean end of stream
	open    func(r io.Reader) (io.Reader, error)
}

func newReplayCore(open func(r io.Reader) (io.Reader, error)) *replayCore {
	return &replayCore{eosAt: -1, open: open}
}

func (c *replayCore) Push(chunk []byte) ([]byte, bool, error) {
	c.accum = append(c.accum, chunk...)
	if c.eosAt >= 0 {
		if len(c.accum) > c.eosAt {
			return nil, true, ErrTrailingData
		}
		return nil, true, nil
	}

	out, eos, consumed, err := decodeOnce(c.accum, c.open)
	if err != nil {
		return nil, false, err
	}

	var fresh []byte
	if len(out) > c.emitted {
		fresh = out[c.emitted:]
		c.emitted = len(out)
	}

	if eos {
		c.eosAt = consumed
		if len(c.accum) > c.eosAt {
			return fresh, true, ErrTrailingData
		}
	}
	return fresh, eos, nil
}

func (c *replayCore) Finish() error {
	if c.eosAt >= 0 {
		if len(c.accum) > c.eosAt {
			return ErrTrailingData
		}
		return nil
	}
	// The transport says the body is over but we never saw a clean end
	// of the compressed stream: either truncated input or corrupt data.
	return io.ErrUnexpectedEOF
}

// decodeOnce attempts a full decode of data using the format opened by
// open, reading one input byte at a time so consumed is an exact count
// of how much of data the decoder actually needed. io.EOF/io.ErrUnexpectedEOF
// while reading means "not enough data yet, try again after the next
// push" and is reported as (partial-output, eos=false, err=nil); any
// other error is real corruption and is returned as-is.
func decodeOnce(data []byte, open func(r io.Reader) (io.Reader, error)) (out []byte, eos bool, consumed int, err error) {
	f := &byteFeeder{data: data}
	r, openErr := open(f)
	if openErr != nil {
		if isIncompleteErr(openErr) {
			return nil, false, f.pos, nil
		}
		return nil, false, f.pos, openErr
	}
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}

	buf := make([]byte, 4096)
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if rerr == nil {
			continue
		}
		if rerr == io.EOF {
			return out, true, f.pos, nil
		}
		if isIncompleteErr(rerr) {
			return out, false, f.pos, nil
		}
		return out, false, f.pos, rerr
	}
}

func isIncompleteErr(err error) bool {
	return err == io.EOF || err == io.ErrUnexpectedEOF
}

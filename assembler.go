package mimicreq

import (
	"io"

	"github.com/mimicreq/mimicreq/internal/pipeline"
)

// pipelineBody is the Response Assembler (C8): it wires raw transport
// reads into the decoding pipeline (C6) one chunk at a time and hands
// the caller decoded bytes, translating any pipeline failure into the
// Decode/Body classification classifyBodyErr defines.
type pipelineBody struct {
	rc  io.ReadCloser
	pl  *pipeline.Pipeline
	buf []byte
	err error
}

// newPipelineBody builds the assembled body for a response. A HEAD
// request never reaches the decoder at all, per spec.md's HEAD semantics:
// the underlying body is drained and closed immediately and an empty
// stream is returned.
func newPipelineBody(rc io.ReadCloser, contentEncoding string, isHead bool) io.ReadCloser {
	if isHead {
		io.Copy(io.Discard, rc)
		rc.Close()
		return io.NopCloser(new(io.LimitedReader))
	}
	return &pipelineBody{rc: rc, pl: pipeline.New(contentEncoding)}
}

func (b *pipelineBody) Read(p []byte) (int, error) {
	for len(b.buf) == 0 {
		if b.err != nil {
			return 0, b.err
		}

		chunk := make([]byte, 32*1024)
		n, rerr := b.rc.Read(chunk)
		if n > 0 {
			out, ferr := b.pl.Feed(pipeline.DataFrame(chunk[:n]))
			b.buf = append(b.buf, out...)
			if ferr != nil {
				b.err = classifyBodyErr(b.pl.State(), ferr)
			}
		}
		if rerr != nil {
			b.finish(rerr)
		}
		if b.err != nil && len(b.buf) == 0 {
			return 0, b.err
		}
	}

	n := copy(p, b.buf)
	b.buf = b.buf[n:]
	return n, nil
}

func (b *pipelineBody) finish(rerr error) {
	if rerr == io.EOF {
		out, ferr := b.pl.Feed(pipeline.EndFrame())
		b.buf = append(b.buf, out...)
		if ferr != nil {
			b.err = classifyBodyErr(b.pl.State(), ferr)
		} else {
			b.err = io.EOF
		}
		return
	}
	_, ferr := b.pl.Feed(pipeline.ErrFrame(rerr))
	if ferr == nil {
		ferr = rerr
	}
	b.err = classifyBodyErr(b.pl.State(), ferr)
}

func (b *pipelineBody) Close() error {
	return b.rc.Close()
}

package mimicreq

import (
	"io"
	"net/http/httputil"
)

// dumpContextKey carries a request's DumpOptions through context.Context
// down to the HTTP/1 wire writer, the same information teacher's dump.go
// got by running a whole second, disposable http.Transport with a fake
// dialer just to observe what it would have written. This package already
// writes its own request bytes to the wire (writeRequestOrdered), so
// dumping only needs to tee that write, not replay it.
type dumpContextKey struct{}

// DumpOptions controls how much of a request/response is recorded to
// Output as it crosses the wire. On the request side the two flags are
// not told apart: setting either RequestHeader or RequestBody records the
// whole HTTP/1 request (line, headers and body).
type DumpOptions struct {
	Output io.Writer

	RequestHeader  bool
	RequestBody    bool
	ResponseHeader bool
	ResponseBody   bool
}

// requestSink returns where request bytes should be teed to, or
// io.Discard if nothing about the request is being dumped.
func (o *DumpOptions) requestSink() io.Writer {
	if o == nil || o.Output == nil || (!o.RequestHeader && !o.RequestBody) {
		return io.Discard
	}
	return o.Output
}

// dumpResponse writes resp's status line and header, and optionally its
// (already decoded) body, to opts.Output. Reading the body here to dump
// it means it's cached by the time the caller calls Response.Bytes/Text
// themselves — see Response.bodyRead.
func dumpResponse(opts *DumpOptions, resp *Response) {
	if opts == nil || opts.Output == nil || resp == nil || resp.Response == nil {
		return
	}
	if opts.ResponseHeader {
		dumped, err := httputil.DumpResponse(resp.Response, false)
		if err == nil {
			opts.Output.Write(dumped)
		}
	}
	if opts.ResponseBody {
		if b, err := resp.Bytes(); err == nil {
			opts.Output.Write(b)
			opts.Output.Write([]byte("\r\n"))
		}
	}
}

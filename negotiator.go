package mimicreq

import (
	"net/http"
	"strings"

	"github.com/mimicreq/mimicreq/internal/header"
)

// codecs the built binary actually supports, in the order they're offered
// when the caller hasn't set Accept-Encoding themselves. Order matters
// only for readability here; decoding is driven by the server's actual
// Content-Encoding response header, not by this list.
var supportedCodecs = []string{"gzip", "deflate", "br", "zstd"}

// negotiateEncoding fills in Accept-Encoding on req if, and only if, the
// caller never set one themselves. It never touches an Accept-Encoding
// the caller explicitly configured, and it never touches Accept either;
// this is the one negotiation knob the decoding pipeline depends on.
func negotiateEncoding(h http.Header) {
	if h.Get(header.AcceptEncoding) != "" {
		return
	}
	h.Set(header.AcceptEncoding, strings.Join(supportedCodecs, ", "))
}

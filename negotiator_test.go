package mimicreq

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mimicreq/mimicreq/internal/header"
)

func TestNegotiateEncodingSetsSupportedCodecsByDefault(t *testing.T) {
	h := make(http.Header)
	negotiateEncoding(h)
	assert.Equal(t, "gzip, deflate, br, zstd", h.Get(header.AcceptEncoding))
}

func TestNegotiateEncodingRespectsCallerValue(t *testing.T) {
	h := make(http.Header)
	h.Set(header.AcceptEncoding, "identity")
	negotiateEncoding(h)
	assert.Equal(t, "identity", h.Get(header.AcceptEncoding))
}

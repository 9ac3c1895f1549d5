package pipeline

import "strings"

// newDecoderForToken maps a single Content-Encoding token to the decoder
// that implements it. The comparison is case-insensitive; "identity" and
// any token this build doesn't recognize report ok=false so the caller can
// fall back to passthrough.
func newDecoderForToken(token string) (Decoder, bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "gzip", "x-gzip":
		return newGzipDecoder(), true
	case "deflate":
		return newDeflateDecoder(), true
	case "br":
		return newBrotliDecoder(), true
	case "zstd":
		return newZstdDecoder(), true
	default:
		return nil, false
	}
}

// splitTokens splits a Content-Encoding header value on commas, trims
// surrounding whitespace from each token and drops empty entries.
func splitTokens(value string) []string {
	raw := strings.Split(value, ",")
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// Package header holds well-known header names and the ordering keys,
// carried inside http.Header itself, that the HTTP/1 writer reads to honor
// a profile's declared transmission order.
package header

const (
	DefaultUserAgent = "mimicreq (https://github.com/mimicreq/mimicreq)"
	UserAgent        = "User-Agent"
	Location         = "Location"
	ContentType      = "Content-Type"
	JsonContentType  = "application/json; charset=utf-8"
	XmlContentType   = "text/xml; charset=utf-8"
	FormContentType  = "application/x-www-form-urlencoded"
	WwwAuthenticate  = "WWW-Authenticate"
	Authorization    = "Authorization"
	Host             = "Host"
	Accept           = "Accept"
	AcceptEncoding   = "Accept-Encoding"
	ContentEncoding  = "Content-Encoding"
	ContentLength    = "Content-Length"
	TransferEncoding = "Transfer-Encoding"

	// OrderKey carries the regular-header transmission order for a request
	// as a synthetic entry inside http.Header itself, so the HTTP/1 writer
	// can read it without a RoundTripper that takes extra arguments. The
	// HTTP/2 path does not read it and strips it before the stock codec
	// sees the request.
	OrderKey = "__Mimicreq_Header_Order__"
	// PseudoOrderKey carries the HTTP/2 pseudo-header order the same way;
	// it is likewise stripped, unread, before the stock HTTP/2 codec.
	PseudoOrderKey = "__Mimicreq_Pseudo_Header_Order__"
)

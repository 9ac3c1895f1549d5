package mimicreq

import (
	"encoding/json"
	"encoding/xml"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mimicreq/mimicreq/internal/charset"
	"github.com/mimicreq/mimicreq/internal/header"
	"github.com/mimicreq/mimicreq/internal/util"
)

// Response is the result of sending a RequestBuilder. Its body has
// already been through the Content-Encoding decoding pipeline (C6/C8) by
// the time any caller sees it; Bytes/Text read the now-plain bytes.
type Response struct {
	*http.Response

	Request *RequestBuilder
	Err     error

	body       []byte
	bodyRead   bool
	receivedAt time.Time
}

// IsSuccess reports whether the response completed without error and
// carries a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.Err == nil && r.Response != nil && r.StatusCode >= 200 && r.StatusCode <= 299
}

// IsError reports whether the response completed without transport error
// but carries a 4xx/5xx status.
func (r *Response) IsError() bool {
	return r.Err == nil && r.Response != nil && r.StatusCode >= 400
}

// ReceivedAt is the time the response headers were received.
func (r *Response) ReceivedAt() time.Time { return r.receivedAt }

// GetContentType returns the Content-Type header value.
func (r *Response) GetContentType() string {
	if r.Response == nil {
		return ""
	}
	return r.Header.Get(header.ContentType)
}

// Bytes reads and returns the entire (already decoded) response body,
// caching it so repeated calls don't re-read the stream.
func (r *Response) Bytes() ([]byte, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if r.bodyRead {
		return r.body, nil
	}
	if r.Response == nil || r.Body == nil {
		r.bodyRead = true
		return nil, nil
	}
	defer r.Body.Close()
	b, err := io.ReadAll(r.Body)
	if err != nil {
		// pipelineBody (installed by Client.wrapResponse for every response body)
		// already returns errors pre-classified via classifyBodyErr; a body
		// that was never wrapped (e.g. a drained HEAD response) can't fail
		// a read at all, so there's nothing left to reclassify here.
		r.Err = err
		return nil, r.Err
	}
	r.body = b
	r.bodyRead = true
	return r.body, nil
}

// Text returns the body decoded to a string, best-effort auto-detecting
// and transcoding its character set the way a browser would for a page
// whose Content-Type never names one explicitly.
func (r *Response) Text() (string, error) {
	b, err := r.Bytes()
	if err != nil {
		return "", err
	}
	if enc, _ := charset.Find(b); enc != nil {
		decoded, derr := enc.NewDecoder().Bytes(b)
		if derr == nil {
			return string(decoded), nil
		}
	}
	return string(b), nil
}

// String is an alias of Text that swallows decode errors, matching the
// ergonomic "just give me something" accessor callers reach for most.
func (r *Response) String() string {
	s, _ := r.Text()
	return s
}

// Unmarshal decodes the response body into v according to Content-Type,
// defaulting to JSON when the type is ambiguous.
func (r *Response) Unmarshal(v interface{}) error {
	b, err := r.Bytes()
	if err != nil {
		return err
	}
	ct := r.GetContentType()
	if util.IsXMLType(ct) {
		return xml.Unmarshal(b, v)
	}
	return json.Unmarshal(b, v)
}

// Save copies the (decoded) response body to dst. If Bytes or Text was
// already called, the body has already been drained and closed, so Save
// writes the cached copy instead of trying to read it a second time.
func (r *Response) Save(dst io.Writer) error {
	if r.Err != nil {
		return r.Err
	}
	if r.bodyRead {
		_, err := dst.Write(r.body)
		return err
	}
	if r.Response == nil || r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	_, err := io.Copy(dst, r.Body)
	return err
}

// SaveFile is Save for callers writing straight to a path on disk.
func (r *Response) SaveFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return r.Save(f)
}

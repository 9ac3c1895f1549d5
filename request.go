package mimicreq

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"net/http"
	urlpkg "net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-querystring/query"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/net/http/httpguts"

	"github.com/mimicreq/mimicreq/internal/header"
)

// EnableDumpTo is shorthand for SetDumpOptions with every dump flag on.
func (r *RequestBuilder) EnableDumpTo(w io.Writer) *RequestBuilder {
	return r.SetDumpOptions(&DumpOptions{
		Output:         w,
		RequestHeader:  true,
		RequestBody:    true,
		ResponseHeader: true,
		ResponseBody:   true,
	})
}

// RequestBuilder accumulates everything about one outgoing request: the
// method and URL, headers and cookies (merged with the Client's common
// ones at send time), the body, and a handful of per-request overrides.
// Mistakes made while building it (a bad URL, a bad struct passed to
// SetQueryParamsStruct) are collected rather than returned immediately,
// the way teacher's Request.appendError does, and surface together the
// moment Send is actually called.
type RequestBuilder struct {
	client *Client

	Method      string
	RawURL      string
	PathParams  map[string]string
	QueryParams urlpkg.Values
	Headers     http.Header
	Cookies     []*http.Cookie
	FormData    urlpkg.Values

	body           io.Reader
	bodyLen        int
	withHostHeader bool
	outputFile     string
	output         io.Writer
	files          []fileField

	retryOption *retryOption
	ctx         context.Context
	dumpOptions *DumpOptions

	buildErr error
}

func (r *RequestBuilder) appendError(err error) {
	r.buildErr = multierror.Append(r.buildErr, err)
}

// SetContext attaches ctx to the request.
func (r *RequestBuilder) SetContext(ctx context.Context) *RequestBuilder {
	r.ctx = ctx
	return r
}

// SetHeader sets a single header, replacing any existing value.
func (r *RequestBuilder) SetHeader(key, value string) *RequestBuilder {
	if r.Headers == nil {
		r.Headers = make(http.Header)
	}
	r.Headers.Set(key, value)
	return r
}

// SetHeaders sets multiple headers at once.
func (r *RequestBuilder) SetHeaders(hdrs map[string]string) *RequestBuilder {
	for k, v := range hdrs {
		r.SetHeader(k, v)
	}
	return r
}

// WithHostHeader asks the Header Plan to emit an explicit Host header,
// placed first in the declared header order. The header reaches the wire
// on HTTP/1.1 only: on HTTP/2 the request goes through the stock
// golang.org/x/net/http2 codec, which drops a Host header and sends
// :authority instead.
func (r *RequestBuilder) WithHostHeader() *RequestBuilder {
	r.withHostHeader = true
	return r
}

// SetQueryParam sets a single URL query parameter.
func (r *RequestBuilder) SetQueryParam(key, value string) *RequestBuilder {
	if r.QueryParams == nil {
		r.QueryParams = make(urlpkg.Values)
	}
	r.QueryParams.Set(key, value)
	return r
}

// SetQueryParams sets multiple URL query parameters from a map.
func (r *RequestBuilder) SetQueryParams(params map[string]string) *RequestBuilder {
	for k, v := range params {
		r.SetQueryParam(k, v)
	}
	return r
}

// SetQueryParamsStruct encodes v (tagged the way go-querystring expects,
// `url:"name"` struct tags) into URL query parameters.
func (r *RequestBuilder) SetQueryParamsStruct(v interface{}) *RequestBuilder {
	values, err := query.Values(v)
	if err != nil {
		r.appendError(err)
		return r
	}
	if r.QueryParams == nil {
		r.QueryParams = make(urlpkg.Values)
	}
	for k, vs := range values {
		for _, v := range vs {
			r.QueryParams.Add(k, v)
		}
	}
	return r
}

// SetPathParam binds a {name} placeholder in the URL to value.
func (r *RequestBuilder) SetPathParam(key, value string) *RequestBuilder {
	if r.PathParams == nil {
		r.PathParams = make(map[string]string)
	}
	r.PathParams[key] = value
	return r
}

// SetPathParams binds multiple {name} placeholders at once.
func (r *RequestBuilder) SetPathParams(params map[string]string) *RequestBuilder {
	for k, v := range params {
		r.SetPathParam(k, v)
	}
	return r
}

// SetCookie adds a cookie to the request.
func (r *RequestBuilder) SetCookie(c *http.Cookie) *RequestBuilder {
	r.Cookies = append(r.Cookies, c)
	return r
}

// SetBody sets the request body. Accepts []byte, string, io.Reader, or
// any other value, which is marshalled as JSON and given the matching
// Content-Type.
func (r *RequestBuilder) SetBody(body interface{}) *RequestBuilder {
	switch b := body.(type) {
	case nil:
		return r
	case []byte:
		r.body = bytes.NewReader(b)
		r.bodyLen = len(b)
	case string:
		r.body = strings.NewReader(b)
		r.bodyLen = len(b)
	case io.Reader:
		r.body = b
		r.bodyLen = -1
	default:
		return r.SetBodyJSON(body)
	}
	return r
}

// SetBodyJSON marshals v as JSON, sets the body and Content-Type.
func (r *RequestBuilder) SetBodyJSON(v interface{}) *RequestBuilder {
	b, err := json.Marshal(v)
	if err != nil {
		r.appendError(err)
		return r
	}
	r.body = bytes.NewReader(b)
	r.bodyLen = len(b)
	return r.SetHeader(header.ContentType, header.JsonContentType)
}

// SetBodyXML marshals v as XML, sets the body and Content-Type.
func (r *RequestBuilder) SetBodyXML(v interface{}) *RequestBuilder {
	b, err := xml.Marshal(v)
	if err != nil {
		r.appendError(err)
		return r
	}
	r.body = bytes.NewReader(b)
	r.bodyLen = len(b)
	return r.SetHeader(header.ContentType, header.XmlContentType)
}

// SetFormData sets url-encoded form fields, sent as the body for methods
// that allow a payload.
func (r *RequestBuilder) SetFormData(data map[string]string) *RequestBuilder {
	if r.FormData == nil {
		r.FormData = make(urlpkg.Values)
	}
	for k, v := range data {
		r.FormData.Set(k, v)
	}
	return r
}

// SetFormDataFromValues is SetFormData for callers who already have
// url.Values (e.g. from parsing a previous request).
func (r *RequestBuilder) SetFormDataFromValues(data urlpkg.Values) *RequestBuilder {
	if r.FormData == nil {
		r.FormData = make(urlpkg.Values)
	}
	for k, vs := range data {
		for _, v := range vs {
			r.FormData.Add(k, v)
		}
	}
	return r
}

// fileField is one part of a multipart/form-data body. content is read
// into cached on the first attempt and reused from there on every retry,
// since a RequestBuilder can be sent more than once but an io.Reader
// (an *os.File in particular) can't.
type fileField struct {
	fieldName string
	fileName  string
	content   io.Reader
	cached    []byte
}

// SetFile attaches filePath as a multipart/form-data file field, using
// the Client's Profile to generate a boundary shaped like the
// impersonated browser's own form encoder would produce.
func (r *RequestBuilder) SetFile(fieldName, filePath string) *RequestBuilder {
	f, err := os.Open(filePath)
	if err != nil {
		r.appendError(err)
		return r
	}
	return r.SetFileReader(fieldName, filepath.Base(filePath), f)
}

// SetFileReader is SetFile for callers who already have an io.Reader
// (e.g. an in-memory buffer) instead of a path on disk.
func (r *RequestBuilder) SetFileReader(fieldName, fileName string, content io.Reader) *RequestBuilder {
	r.files = append(r.files, fileField{fieldName: fieldName, fileName: fileName, content: content})
	return r
}

// SetOutputFile streams the response body straight to a file instead of
// buffering it in memory.
func (r *RequestBuilder) SetOutputFile(filename string) *RequestBuilder {
	r.outputFile = filename
	return r
}

// SetOutput streams the response body straight to w instead of buffering
// it in memory.
func (r *RequestBuilder) SetOutput(w io.Writer) *RequestBuilder {
	r.output = w
	return r
}

// SetDumpOptions records this request's and its response's wire bytes
// per opts. HTTP/2 requests only ever have their response side dumped;
// capturing HTTP/2 request bytes would mean instrumenting the shared
// stock http2.ClientConn writer, not this request alone.
func (r *RequestBuilder) SetDumpOptions(opts *DumpOptions) *RequestBuilder {
	r.dumpOptions = opts
	return r
}

// SetRetryCount enables retry for this request only, overriding the
// Client's common retry count.
func (r *RequestBuilder) SetRetryCount(count int) *RequestBuilder {
	r.retryOption = r.retryOption.Clone()
	r.retryOption.MaxRetries = count
	return r
}

func (r *RequestBuilder) context() context.Context {
	if r.ctx != nil {
		return r.ctx
	}
	return context.Background()
}

func validMethod(method string) bool {
	return len(method) > 0 && strings.IndexFunc(method, isNotToken) == -1
}

func isNotToken(rn rune) bool {
	return !httpguts.IsTokenRune(rn)
}

// Send builds the final URL and headers, then executes method against
// it, retrying per the Client's and this request's retry policy.
func (r *RequestBuilder) Send(method, url string) (*Response, error) {
	if method == "" {
		method = http.MethodGet
	}
	if !validMethod(method) {
		r.appendError(&Error{Class: ClassRequest, Err: errInvalidMethod(method)})
	}
	r.Method = method
	if url != "" {
		r.RawURL = url
	}
	if r.buildErr != nil {
		return nil, r.buildErr
	}
	return r.client.execute(r)
}

// Get sends a GET request.
func (r *RequestBuilder) Get(url string) (*Response, error) { return r.Send(http.MethodGet, url) }

// Post sends a POST request.
func (r *RequestBuilder) Post(url string) (*Response, error) { return r.Send(http.MethodPost, url) }

// Put sends a PUT request.
func (r *RequestBuilder) Put(url string) (*Response, error) { return r.Send(http.MethodPut, url) }

// Patch sends a PATCH request.
func (r *RequestBuilder) Patch(url string) (*Response, error) {
	return r.Send(http.MethodPatch, url)
}

// Delete sends a DELETE request.
func (r *RequestBuilder) Delete(url string) (*Response, error) {
	return r.Send(http.MethodDelete, url)
}

// Head sends a HEAD request.
func (r *RequestBuilder) Head(url string) (*Response, error) { return r.Send(http.MethodHead, url) }

// Options sends an OPTIONS request.
func (r *RequestBuilder) Options(url string) (*Response, error) {
	return r.Send(http.MethodOptions, url)
}

type methodError string

func (e methodError) Error() string { return "mimicreq: invalid method " + string(e) }

func errInvalidMethod(method string) error { return methodError(method) }

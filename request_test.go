package mimicreq

import (
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestBuilderSetBodyVariants(t *testing.T) {
	var gotBody, gotContentType string
	srv := newPlainTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	})
	c := testClient(t, srv)

	_, err := c.R().SetBody([]byte("raw-bytes")).Post("/")
	assert.NoError(t, err)
	assert.Equal(t, "raw-bytes", gotBody)

	_, err = c.R().SetBody("raw-string").Post("/")
	assert.NoError(t, err)
	assert.Equal(t, "raw-string", gotBody)

	type payload struct {
		Name string `json:"name"`
	}
	_, err = c.R().SetBody(payload{Name: "gopher"}).Post("/")
	assert.NoError(t, err)
	assert.Equal(t, `{"name":"gopher"}`, gotBody)
	assert.Contains(t, gotContentType, "application/json")
}

func TestRequestBuilderInvalidMethodIsRejected(t *testing.T) {
	srv := newPlainTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("server should never be reached for an invalid method")
	})
	c := testClient(t, srv)

	_, err := c.R().Send("BAD METHOD", "/")
	assert.Error(t, err)
}

func TestSetQueryParamsStructEncodesTaggedFields(t *testing.T) {
	var gotQuery string
	srv := newPlainTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	})
	c := testClient(t, srv)

	type filter struct {
		Page int    `url:"page"`
		Tag  string `url:"tag"`
	}
	_, err := c.R().SetQueryParamsStruct(filter{Page: 2, Tag: "go"}).Get("/")
	assert.NoError(t, err)
	assert.Contains(t, gotQuery, "page=2")
	assert.Contains(t, gotQuery, "tag=go")
}

func TestMultipartFileContentSurvivesARetry(t *testing.T) {
	c := &Client{profile: &Profile{MultipartBoundary: func() string { return "fixed-boundary" }}}
	r := &RequestBuilder{}
	r.SetFileReader("upload", "hello.txt", strings.NewReader("payload-bytes"))

	first, _, _, err := c.buildMultipartBody(r)
	assert.NoError(t, err)
	firstBody, err := io.ReadAll(first)
	assert.NoError(t, err)
	assert.Contains(t, string(firstBody), "payload-bytes")

	// Simulate a second retry attempt building the same multipart body
	// again; the underlying strings.Reader has already been drained once,
	// so this only succeeds because the file content was cached.
	second, _, _, err := c.buildMultipartBody(r)
	assert.NoError(t, err)
	secondBody, err := io.ReadAll(second)
	assert.NoError(t, err)
	assert.Contains(t, string(secondBody), "payload-bytes")
}

func TestRequestBuilderWithHostHeaderAddsExplicitHostHeader(t *testing.T) {
	srv := newPlainTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	c := testClient(t, srv)

	u, _ := c.resolveURL(&RequestBuilder{RawURL: "/"})
	h := c.buildHeaders(&RequestBuilder{withHostHeader: true}, u.Host)
	assert.Equal(t, u.Host, h.Get("Host"))

	_, err := c.R().WithHostHeader().Get("/")
	assert.NoError(t, err)
}

func TestRequestBuilderSetOutputFile(t *testing.T) {
	srv := newPlainTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("file-contents"))
	})
	c := testClient(t, srv)

	path := t.TempDir() + "/out.txt"
	resp, err := c.R().SetOutputFile(path).Get("/")
	assert.NoError(t, err)
	assert.NoError(t, resp.Err)

	contents, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "file-contents", string(contents))
}

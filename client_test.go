package mimicreq

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newPlainTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func testClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClientBuilder(IdentityChrome120).SetBaseURL(srv.URL).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return c
}

func TestClientGetSendsRequestAndReadsBody(t *testing.T) {
	srv := newPlainTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hello", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("world"))
	})
	c := testClient(t, srv)

	resp, err := c.R().Get("/hello")
	assert.NoError(t, err)
	assert.True(t, resp.IsSuccess())
	s, err := resp.Text()
	assert.NoError(t, err)
	assert.Equal(t, "world", s)
}

func TestClientCommonHeadersAndRequestOverride(t *testing.T) {
	var gotCommon, gotOverride string
	srv := newPlainTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotCommon = r.Header.Get("X-Common")
		gotOverride = r.Header.Get("X-Override")
		w.WriteHeader(http.StatusOK)
	})
	c, err := NewClientBuilder(IdentityChrome120).
		SetBaseURL(srv.URL).
		SetCommonHeader("X-Common", "client-value").
		SetCommonHeader("X-Override", "client-value").
		Build()
	assert.NoError(t, err)

	_, err = c.R().SetHeader("X-Override", "request-value").Get("/")
	assert.NoError(t, err)
	assert.Equal(t, "client-value", gotCommon)
	assert.Equal(t, "request-value", gotOverride)
}

func TestClientCommonHeaderOverridesProfileDefaultWithoutDuplicating(t *testing.T) {
	var got []string
	srv := newPlainTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Values("Sec-Ch-Ua")
		w.WriteHeader(http.StatusOK)
	})
	c, err := NewClientBuilder(IdentityChrome120).
		SetBaseURL(srv.URL).
		SetCommonHeader("sec-ch-ua", `"caller"`).
		Build()
	assert.NoError(t, err)

	_, err = c.R().Get("/")
	assert.NoError(t, err)
	assert.Equal(t, []string{`"caller"`}, got)
}

func TestClientQueryAndPathParams(t *testing.T) {
	srv := newPlainTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/42", r.URL.Path)
		assert.Equal(t, "desc", r.URL.Query().Get("sort"))
		w.WriteHeader(http.StatusOK)
	})
	c := testClient(t, srv)

	_, err := c.R().
		SetPathParam("id", "42").
		SetQueryParam("sort", "desc").
		Get("/users/{id}")
	assert.NoError(t, err)
}

func TestClientRetriesOnConnectError(t *testing.T) {
	c, err := NewClientBuilder(IdentityChrome120).
		SetBaseURL("http://127.0.0.1:1").
		SetRetryCount(2).
		SetRetryInterval(func(resp *Response, attempt int) time.Duration { return time.Millisecond }).
		Build()
	assert.NoError(t, err)

	attempts := 0
	c.httpClient.Transport = roundTripCounter{c.httpClient.Transport, &attempts}

	_, err = c.R().Get("/")
	assert.Error(t, err)
	assert.True(t, IsConnect(err))
	assert.Equal(t, 3, attempts) // initial attempt + 2 retries
}

type roundTripCounter struct {
	rt http.RoundTripper
	n  *int
}

func (r roundTripCounter) RoundTrip(req *http.Request) (*http.Response, error) {
	*r.n++
	return r.rt.RoundTrip(req)
}

func TestClientRedirectPolicyNoRedirect(t *testing.T) {
	target := newPlainTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("redirect target should never be reached")
	})
	srv := newPlainTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusFound)
	})
	c, err := NewClientBuilder(IdentityChrome120).
		SetBaseURL(srv.URL).
		SetRedirectPolicy(NoRedirectPolicy()).
		Build()
	assert.NoError(t, err)

	resp, err := c.R().Get("/")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestClientDigestAuth(t *testing.T) {
	const user, pass = "alice", "secret123"
	attempt := 0
	srv := newPlainTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempt++
		if r.Header.Get("Authorization") == "" {
			w.Header().Set("WWW-Authenticate", `Digest realm="test", qop="auth", nonce="abc123", opaque="xyz"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	c, err := NewClientBuilder(IdentityChrome120).
		SetBaseURL(srv.URL).
		SetDigestAuth(user, pass).
		Build()
	assert.NoError(t, err)

	resp, err := c.R().Get("/secure")
	assert.NoError(t, err)
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, 2, attempt)
}

package mimicreq

import (
	"bytes"
	"io"
	"net/http"
	"sync"

	"github.com/icholy/digest"
)

// HttpRoundTripFunc adapts a plain function to http.RoundTripper, the way
// digestAuth wraps an existing Transport without needing its own type.
type HttpRoundTripFunc func(req *http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f HttpRoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

// cchal is a cached challenge and the number of times it's been used.
type cchal struct {
	c *digest.Challenge
	n int
}

// digestAuth wraps a Transport so it transparently answers RFC 7616
// digest challenges: the first request per host is sent with whatever
// credential was cached from a prior 401 exchange, and a fresh 401
// triggers exactly one retry with a newly computed credential. It sits
// below the Header Plan (C4/C5) — it only ever adds or replaces the
// Authorization header on the raw *http.Request a RoundTripper sees,
// after everything else in the request has already been assembled and
// ordered.
type digestAuth struct {
	Username   string
	Password   string
	HttpClient *http.Client
	cache      map[string]*cchal
	cacheMu    sync.Mutex
}

func (da *digestAuth) digest(req *http.Request, chal *digest.Challenge, count int) (*digest.Credentials, error) {
	opt := digest.Options{
		Method:   req.Method,
		URI:      req.URL.RequestURI(),
		GetBody:  req.GetBody,
		Count:    count,
		Username: da.Username,
		Password: da.Password,
	}
	return digest.Digest(chal, opt)
}

// challenge returns a cached challenge and count for the provided request.
func (da *digestAuth) challenge(req *http.Request) (*digest.Challenge, int, bool) {
	da.cacheMu.Lock()
	defer da.cacheMu.Unlock()
	host := req.URL.Hostname()
	cc, ok := da.cache[host]
	if !ok {
		return nil, 0, false
	}
	cc.n++
	return cc.c, cc.n, true
}

// prepare attempts to find a cached challenge that matches the requested
// domain, and use it to set the Authorization header.
func (da *digestAuth) prepare(req *http.Request) error {
	if da.HttpClient.Jar != nil {
		for _, cookie := range da.HttpClient.Jar.Cookies(req.URL) {
			req.AddCookie(cookie)
		}
	}
	chal, count, ok := da.challenge(req)
	if !ok {
		return nil
	}
	cred, err := da.digest(req, chal, count)
	if err != nil {
		return err
	}
	if cred != nil {
		req.Header.Set("Authorization", cred.String())
	}
	return nil
}

// HttpRoundTripWrapperFunc wraps rt so every request gets one free retry
// with a digest credential after an initial 401.
func (da *digestAuth) HttpRoundTripWrapperFunc(rt http.RoundTripper) HttpRoundTripFunc {
	return func(req *http.Request) (resp *http.Response, err error) {
		clone, err := cloner(req)
		if err != nil {
			return nil, err
		}

		first, err := clone()
		if err != nil {
			return nil, err
		}

		if err := da.prepare(first); err != nil {
			return nil, err
		}

		res, err := rt.RoundTrip(first)
		if err != nil || res.StatusCode != http.StatusUnauthorized {
			return res, err
		}

		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()

		host := req.URL.Hostname()
		chal, err := digest.FindChallenge(res.Header)
		if err != nil {
			da.cacheMu.Lock()
			delete(da.cache, host)
			da.cacheMu.Unlock()
			if err == digest.ErrNoChallenge {
				return res, nil
			}
			return nil, err
		}
		da.cacheMu.Lock()
		da.cache[host] = &cchal{c: chal}
		da.cacheMu.Unlock()

		second, err := clone()
		if err != nil {
			return nil, err
		}

		if err := da.prepare(second); err != nil {
			return nil, err
		}

		return rt.RoundTrip(second)
	}
}

// cloner returns a function which makes clones of the provided request,
// buffering its body in memory once (if it has no GetBody already) so
// the digest retry can replay it.
func cloner(req *http.Request) (func() (*http.Request, error), error) {
	getbody := req.GetBody
	if getbody == nil {
		if req.Body == nil || req.Body == http.NoBody {
			getbody = func() (io.ReadCloser, error) {
				return http.NoBody, nil
			}
		} else {
			body, err := io.ReadAll(req.Body)
			if err != nil {
				return nil, err
			}
			if err := req.Body.Close(); err != nil {
				return nil, err
			}
			getbody = func() (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader(body)), nil
			}
		}
	}
	return func() (*http.Request, error) {
		clone := req.Clone(req.Context())
		body, err := getbody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
		clone.GetBody = getbody
		return clone, nil
	}, nil
}

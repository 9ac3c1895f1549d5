package mimicreq

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/http2"

	"github.com/mimicreq/mimicreq/internal/header"
)

// Transport is the http.RoundTripper that actually puts a Profile on the
// wire. It owns one decision per request: dial a fresh TLS connection with
// the Profile's ClientHello shape, look at what the server picked over
// ALPN, and hand the request to whichever wire codec that protocol needs.
// Connection pooling, DNS and proxies are the external collaborators
// spec.md treats as out of scope for the impersonation core; this
// Transport still wires them (a real client needs them to work at all),
// but keeps them simple rather than reimplementing net/http's pool:
// only HTTP/2 connections are reused, and proxying works only through a
// DialContext such as the SOCKS5 dialer SetProxyURL installs.
type Transport struct {
	Profile *Profile

	// DialContext dials the plain TCP (or proxied) connection a TLS
	// handshake will run over. Defaults to a net.Dialer.
	DialContext func(ctx context.Context, network, addr string) (net.Conn, error)

	// DialTLSContext, if set, fully replaces the uTLS handshake: it must
	// return an already-negotiated connection. This is the pluggable TLS
	// backend seam spec.md §6 describes — a caller can hand in any TLS
	// stack as long as the returned conn reports ALPN the way TLSConn
	// documents. When nil (the default), Transport runs the Profile's
	// own uTLS ClientHello instead.
	DialTLSContext func(ctx context.Context, network, addr string) (net.Conn, error)

	TLSHandshakeTimeout time.Duration

	// TLSTrust carries certificate verification settings (RootCAs,
	// client Certificates, InsecureSkipVerify). It never influences the
	// ClientHello shape itself — that's entirely the Profile's TLSSpec.
	TLSTrust *tls.Config

	// Proxy holds the http/https proxy set by ClientBuilder.SetProxyURL.
	// RoundTrip does not consult it.
	Proxy func(*http.Request) (*url.URL, error)

	log Logger

	mu      sync.Mutex
	h2conns map[string]*http2.ClientConn
	h2t     *http2.Transport
}

// NewTransport builds a Transport bound to profile, ready to use.
func NewTransport(profile *Profile) *Transport {
	t := &Transport{
		Profile:             profile,
		TLSHandshakeTimeout: 10 * time.Second,
		log:                 createDefaultLogger(),
		h2conns:             make(map[string]*http2.ClientConn),
	}
	t.h2t = &http2.Transport{}
	if profile != nil && profile.H2 != nil {
		if size, ok := profile.H2.maxHeaderListSize(); ok {
			t.h2t.MaxHeaderListSize = size
		}
	}
	return t
}

// Clone returns a Transport with the same configuration, independent
// connection cache.
func (t *Transport) Clone() *Transport {
	cp := *t
	cp.h2conns = make(map[string]*http2.ClientConn)
	if t.Profile != nil {
		cp.Profile = t.Profile.Clone()
	}
	h2t := *t.h2t
	cp.h2t = &h2t
	return &cp
}

func (t *Transport) dial(ctx context.Context, network, addr string) (net.Conn, error) {
	if t.DialContext != nil {
		return t.DialContext(ctx, network, addr)
	}
	var d net.Dialer
	return d.DialContext(ctx, network, addr)
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return t.roundTripPlain(req)
	}

	addr := canonicalAddr(req.URL)
	serverName := req.URL.Hostname()

	// The stock HTTP/2 codec writes every http.Header entry it is given,
	// so it gets a copy without the header-plan ordering keys.
	h2req := req.Clone(req.Context())
	delete(h2req.Header, header.OrderKey)
	delete(h2req.Header, header.PseudoOrderKey)

	if cc := t.cachedH2Conn(addr); cc != nil {
		resp, err := cc.RoundTrip(h2req)
		if err == nil {
			return resp, nil
		}
		// fall through to a fresh dial on any cached-connection failure
	}

	ctx := req.Context()
	conn, negotiated, err := t.dialAndHandshake(ctx, addr, serverName)
	if err != nil {
		return nil, err
	}

	switch negotiated {
	case "h2":
		cc, err := t.h2t.NewClientConn(conn)
		if err != nil {
			conn.Close()
			return nil, classify(ClassConnect, "", err)
		}
		t.storeH2Conn(addr, cc)
		resp, err := cc.RoundTrip(h2req)
		if err != nil {
			return nil, classify(ClassRequest, "", err)
		}
		return resp, nil
	default:
		return t.roundTripH1(conn, req)
	}
}

// dialAndHandshake performs the TCP dial and TLS handshake for addr,
// honoring the Profile's ClientHello shape, and resolves Open Question
// (b): a Profile with HTTP/2 disabled that connects to an origin which
// nonetheless selects "h2" over ALPN fails here, at connect time,
// classified Connect/alpn_mismatch — never silently at the first body
// read.
func (t *Transport) dialAndHandshake(ctx context.Context, addr, serverName string) (net.Conn, string, error) {
	if t.TLSHandshakeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.TLSHandshakeTimeout)
		defer cancel()
	}

	rawConn, err := t.dial(ctx, "tcp", addr)
	if err != nil {
		return nil, "", classify(ClassConnect, "", err)
	}

	if t.DialTLSContext != nil {
		conn, err := t.DialTLSContext(ctx, "tcp", addr)
		if err != nil {
			rawConn.Close()
			return nil, "", classify(ClassTLS, "", err)
		}
		rawConn.Close() // the override owns its own dial
		proto := ""
		if tc, ok := conn.(TLSConn); ok {
			proto = tc.ConnectionState().NegotiatedProtocol
		}
		if err := t.checkALPN(proto); err != nil {
			conn.Close()
			return nil, "", err
		}
		return conn, proto, nil
	}

	nextProtos := []string{"http/1.1"}
	if t.Profile != nil && t.Profile.H2 != nil {
		nextProtos = []string{"h2", "http/1.1"}
	}

	uconn, proto, err := t.Profile.TLS.handshake(ctx, rawConn, serverName, nextProtos, t.TLSTrust)
	if err != nil {
		rawConn.Close()
		return nil, "", classify(ClassTLS, "", err)
	}
	if err := t.checkALPN(proto); err != nil {
		uconn.Close()
		return nil, "", err
	}
	return uconn, proto, nil
}

func (t *Transport) checkALPN(proto string) error {
	if proto != "h2" {
		return nil
	}
	if t.Profile == nil || t.Profile.H2 != nil {
		return nil
	}
	return classify(ClassConnect, "alpn_mismatch",
		errors.New("server selected h2 over ALPN but the profile has HTTP/2 disabled"))
}

func (t *Transport) cachedH2Conn(addr string) *http2.ClientConn {
	t.mu.Lock()
	defer t.mu.Unlock()
	cc, ok := t.h2conns[addr]
	if !ok {
		return nil
	}
	if !cc.CanTakeNewRequest() {
		delete(t.h2conns, addr)
		return nil
	}
	return cc
}

func (t *Transport) storeH2Conn(addr string, cc *http2.ClientConn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.h2conns[addr] = cc
}

// roundTripH1 writes req directly to conn in the order HeaderPlan
// declared (net/http's own Request.Write sorts/iterates the header map in
// an order this package doesn't control) and parses the raw response back
// off the same connection.
func (t *Transport) roundTripH1(conn net.Conn, req *http.Request) (*http.Response, error) {
	if dl, ok := req.Context().Deadline(); ok {
		conn.SetDeadline(dl)
	}

	w := io.Writer(conn)
	if opts, ok := req.Context().Value(dumpContextKey{}).(*DumpOptions); ok {
		w = io.MultiWriter(conn, opts.requestSink())
	}
	if err := writeRequestOrdered(w, req); err != nil {
		conn.Close()
		return nil, classify(ClassRequest, "", err)
	}

	resp, err := http.ReadResponse(bufio.NewReader(conn), req)
	if err != nil {
		conn.Close()
		return nil, classify(ClassRequest, "", err)
	}
	resp.Body = &closeWithConn{ReadCloser: resp.Body, conn: conn}
	return resp, nil
}

// roundTripPlain handles plain-text http:// requests: there's no ALPN or
// ClientHello to shape, but header order still goes through the same
// writeRequestOrdered path HTTPS/HTTP1 uses.
func (t *Transport) roundTripPlain(req *http.Request) (*http.Response, error) {
	addr := canonicalAddr(req.URL)
	conn, err := t.dial(req.Context(), "tcp", addr)
	if err != nil {
		return nil, classify(ClassConnect, "", err)
	}
	return t.roundTripH1(conn, req)
}

func writeRequestOrdered(w io.Writer, req *http.Request) error {
	bw := bufio.NewWriter(w)

	requestURI := req.URL.RequestURI()
	if _, err := fmt.Fprintf(bw, "%s %s HTTP/1.1\r\n", req.Method, requestURI); err != nil {
		return err
	}

	host := req.Host
	if host == "" {
		host = req.URL.Host
	}
	if req.Header.Get(header.Host) == "" {
		if _, err := fmt.Fprintf(bw, "Host: %s\r\n", host); err != nil {
			return err
		}
	}

	chunked := false
	if req.Body != nil && req.Header.Get(header.ContentLength) == "" {
		if req.ContentLength > 0 {
			if _, err := fmt.Fprintf(bw, "Content-Length: %d\r\n", req.ContentLength); err != nil {
				return err
			}
		} else {
			chunked = true
			if _, err := bw.WriteString("Transfer-Encoding: chunked\r\n"); err != nil {
				return err
			}
		}
	}

	for _, kv := range SortedHeader(req.Header) {
		for _, v := range kv.Values {
			if _, err := fmt.Fprintf(bw, "%s: %s\r\n", kv.Key, v); err != nil {
				return err
			}
		}
	}
	if _, err := bw.WriteString("\r\n"); err != nil {
		return err
	}

	if req.Body != nil {
		if chunked {
			cw := httputil.NewChunkedWriter(bw)
			if _, err := io.Copy(cw, req.Body); err != nil {
				return err
			}
			if err := cw.Close(); err != nil {
				return err
			}
			if _, err := bw.WriteString("\r\n"); err != nil {
				return err
			}
		} else if _, err := io.Copy(bw, req.Body); err != nil {
			return err
		}
		req.Body.Close()
	}
	return bw.Flush()
}

// closeWithConn closes the underlying connection alongside the response
// body, since roundTripH1 doesn't hand connections to any pool.
type closeWithConn struct {
	io.ReadCloser
	conn net.Conn
}

func (c *closeWithConn) Close() error {
	err := c.ReadCloser.Close()
	c.conn.Close()
	return err
}

func canonicalAddr(u *url.URL) string {
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		if u.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}
	return net.JoinHostPort(host, port)
}

package mimicreq

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/mimicreq/mimicreq/internal/header"
	"github.com/mimicreq/mimicreq/internal/util"
)

// Client sends requests shaped like a specific browser's traffic: its
// Profile drives the ClientHello, the HTTP/2 preface, and header order;
// everything else (redirects, retries, cookies, a common set of headers
// every request carries) works the way an ordinary HTTP client's does.
type Client struct {
	profile    *Profile
	transport  *Transport
	httpClient *http.Client
	headerPlan *HeaderPlan

	baseURL       string
	commonHeaders http.Header
	commonCookies []*http.Cookie

	retryOption *retryOption
	log         Logger
}

// ClientBuilder assembles a Client.
type ClientBuilder struct {
	c *Client
}

// C starts a ClientBuilder seeded with the Chrome 120 profile, the most
// common starting point for impersonation.
func C() *ClientBuilder {
	return NewClientBuilder(IdentityChrome120)
}

// NewClientBuilder starts a ClientBuilder seeded with the named profile.
func NewClientBuilder(id Identity) *ClientBuilder {
	profile, ok := LookupProfile(id)
	if !ok {
		profile = &Profile{Identity: id, TLS: &TLSSpec{}, H2: &H2Spec{}}
	}
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	c := &Client{
		profile:       profile,
		transport:     NewTransport(profile),
		commonHeaders: make(http.Header),
		retryOption:   newDefaultRetryOption(),
		log:           createDefaultLogger(),
		headerPlan: &HeaderPlan{
			PseudoOrder: profile.PseudoHeaderOrder,
			Order:       profile.HeaderOrder,
		},
	}
	c.httpClient = &http.Client{
		Transport: c.transport,
		Jar:       jar,
	}
	return &ClientBuilder{c: c}
}

// SetProfile swaps the browser identity this Client impersonates.
func (b *ClientBuilder) SetProfile(profile *Profile) *ClientBuilder {
	b.c.profile = profile
	b.c.transport.Profile = profile
	b.c.headerPlan = &HeaderPlan{
		PseudoOrder: profile.PseudoHeaderOrder,
		Order:       profile.HeaderOrder,
	}
	return b
}

// SetBaseURL sets a URL every RequestBuilder's relative URL is resolved
// against.
func (b *ClientBuilder) SetBaseURL(u string) *ClientBuilder {
	b.c.baseURL = strings.TrimSuffix(u, "/")
	return b
}

// SetCommonHeader sets a header sent on every request from this Client,
// unless a RequestBuilder overrides it.
func (b *ClientBuilder) SetCommonHeader(key, value string) *ClientBuilder {
	b.c.commonHeaders.Set(key, value)
	return b
}

// SetCommonHeaders sets multiple common headers at once.
func (b *ClientBuilder) SetCommonHeaders(hdrs map[string]string) *ClientBuilder {
	for k, v := range hdrs {
		b.c.commonHeaders.Set(k, v)
	}
	return b
}

// SetCommonCookies sets cookies sent on every request from this Client.
func (b *ClientBuilder) SetCommonCookies(cookies ...*http.Cookie) *ClientBuilder {
	b.c.commonCookies = append(b.c.commonCookies, cookies...)
	return b
}

// SetTimeout bounds the total time of each attempt of a request,
// including its redirects and reading the response body. Every retry
// attempt starts with the full timeout again.
func (b *ClientBuilder) SetTimeout(d time.Duration) *ClientBuilder {
	b.c.httpClient.Timeout = d
	return b
}

// SetRedirectPolicy installs policies every redirect must satisfy; the
// first one to return an error stops the chain.
func (b *ClientBuilder) SetRedirectPolicy(policies ...RedirectPolicy) *ClientBuilder {
	b.c.httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		for _, p := range policies {
			if err := p(req, via); err != nil {
				return err
			}
		}
		return nil
	}
	return b
}

// SetCookieJar replaces the default public-suffix-aware cookie jar.
func (b *ClientBuilder) SetCookieJar(jar http.CookieJar) *ClientBuilder {
	b.c.httpClient.Jar = jar
	return b
}

// DisableCookies turns off cookie handling entirely.
func (b *ClientBuilder) DisableCookies() *ClientBuilder {
	b.c.httpClient.Jar = nil
	return b
}

// SetLogger replaces the default logger.
func (b *ClientBuilder) SetLogger(l Logger) *ClientBuilder {
	if l == nil {
		l = disableLogger{}
	}
	b.c.log = l
	return b
}

// SetRetryCount sets how many times a request retries on a retryable
// failure (connect/timeout errors, or a condition set via
// AddRetryCondition) before giving up.
func (b *ClientBuilder) SetRetryCount(count int) *ClientBuilder {
	b.c.retryOption.MaxRetries = count
	return b
}

// SetRetryInterval overrides the backoff between retry attempts.
func (b *ClientBuilder) SetRetryInterval(fn GetRetryIntervalFunc) *ClientBuilder {
	b.c.retryOption.GetRetryInterval = fn
	return b
}

// SetRetryBackoffInterval sets a jittered exponential backoff for retry
// attempts, the common case SetRetryInterval exists for: attempt n sleeps
// a random duration in [d/2, d), where d is min*2^n capped at max.
func (b *ClientBuilder) SetRetryBackoffInterval(min, max time.Duration) *ClientBuilder {
	b.c.retryOption.GetRetryInterval = backoffInterval(min, max)
	return b
}

// AddRetryCondition adds a condition under which a response or error is
// considered retryable, beyond the built-in connect/timeout classes.
func (b *ClientBuilder) AddRetryCondition(fn RetryConditionFunc) *ClientBuilder {
	b.c.retryOption.RetryConditions = append(b.c.retryOption.RetryConditions, fn)
	return b
}

// AddRetryHook registers a function run before each retry attempt.
func (b *ClientBuilder) AddRetryHook(fn RetryHookFunc) *ClientBuilder {
	b.c.retryOption.RetryHooks = append(b.c.retryOption.RetryHooks, fn)
	return b
}

// SetProxyURL routes every request through a fixed SOCKS5 proxy URL
// (scheme socks5*). An http or https proxy URL is only stored in
// Transport.Proxy, which Transport does not read, so requests are then
// sent directly.
func (b *ClientBuilder) SetProxyURL(rawProxyURL string) *ClientBuilder {
	u, err := url.Parse(rawProxyURL)
	if err != nil {
		b.c.log.Errorf("mimicreq: invalid proxy url %q: %v", rawProxyURL, err)
		return b
	}
	if strings.HasPrefix(u.Scheme, "socks5") {
		dial, err := socksDialContext(u)
		if err != nil {
			b.c.log.Errorf("mimicreq: invalid socks5 proxy url %q: %v", rawProxyURL, err)
			return b
		}
		b.c.transport.DialContext = dial
		return b
	}
	b.c.transport.Proxy = http.ProxyURL(u)
	return b
}

// SetCommonHeaderOrder sets the client-wide default header write order,
// overriding whatever the Profile declared. A RequestBuilder can still
// override individual header values; it's the order itself that's fixed
// client-wide.
func (b *ClientBuilder) SetCommonHeaderOrder(order ...string) *ClientBuilder {
	b.c.headerPlan.Order = order
	return b
}

// SetCommonPseudoHeaderOrder sets the client-wide default HTTP/2
// pseudo-header write order.
func (b *ClientBuilder) SetCommonPseudoHeaderOrder(order ...string) *ClientBuilder {
	b.c.headerPlan.PseudoOrder = order
	return b
}

// SetDigestAuth makes the Client transparently answer RFC 7616 digest
// challenges for username/password, caching the challenge per host so
// only the first request to a host pays the extra round trip.
func (b *ClientBuilder) SetDigestAuth(username, password string) *ClientBuilder {
	da := &digestAuth{
		Username:   username,
		Password:   password,
		HttpClient: b.c.httpClient,
		cache:      make(map[string]*cchal),
	}
	b.c.httpClient.Transport = da.HttpRoundTripWrapperFunc(b.c.transport)
	return b
}

// SetCommonBasicAuth sets the Authorization header every request from this
// Client carries, unless a RequestBuilder overrides it.
func (b *ClientBuilder) SetCommonBasicAuth(username, password string) *ClientBuilder {
	b.c.commonHeaders.Set(header.Authorization, util.BasicAuthHeaderValue(username, password))
	return b
}

// SetTLSTrust sets certificate verification settings (RootCAs, client
// Certificates, InsecureSkipVerify). It never touches the ClientHello
// shape, only certificate verification.
func (b *ClientBuilder) SetTLSTrust(trust *tls.Config) *ClientBuilder {
	b.c.transport.TLSTrust = trust
	return b
}

// Build finishes assembling the Client, validating that the backend can
// actually honor the Profile's fingerprint before handing out a Client
// that would otherwise only discover that at the first request.
func (b *ClientBuilder) Build() (*Client, error) {
	if b.c.profile != nil {
		if err := b.c.profile.TLS.validate(); err != nil {
			return nil, classify(ClassBuilder, ReasonUnsupportedProfileFeature, err)
		}
		if err := b.c.profile.H2.validate(); err != nil {
			return nil, classify(ClassBuilder, ReasonUnsupportedProfileFeature, err)
		}
	}
	return b.c, nil
}

// Clone returns an independent copy of c: a separate Profile, Transport
// connection cache, and common header/cookie set, so customizing the
// copy never affects the original. The copy's http.Client uses the bare
// Transport, so digest authentication set with SetDigestAuth is not
// carried over.
func (c *Client) Clone() *Client {
	cp := *c
	cp.profile = c.profile.Clone()
	cp.transport = c.transport.Clone()
	cp.httpClient = &http.Client{
		Transport:     cp.transport,
		Jar:           c.httpClient.Jar,
		CheckRedirect: c.httpClient.CheckRedirect,
		Timeout:       c.httpClient.Timeout,
	}
	cp.commonHeaders = c.commonHeaders.Clone()
	cp.commonCookies = append([]*http.Cookie(nil), c.commonCookies...)
	cp.retryOption = c.retryOption.Clone()
	return &cp
}

// R starts a new RequestBuilder bound to this Client.
func (c *Client) R() *RequestBuilder {
	return &RequestBuilder{client: c, retryOption: c.retryOption.Clone()}
}

// Get is shorthand for R().Get(url).
func (c *Client) Get(url string) (*Response, error) { return c.R().Get(url) }

// Post is shorthand for R().Post(url).
func (c *Client) Post(url string) (*Response, error) { return c.R().Post(url) }

func (c *Client) resolveURL(r *RequestBuilder) (*url.URL, error) {
	raw := r.RawURL
	for name, value := range r.PathParams {
		raw = strings.ReplaceAll(raw, "{"+name+"}", url.PathEscape(value))
	}
	if c.baseURL != "" && !strings.Contains(raw, "://") {
		switch {
		case raw == "":
			raw = c.baseURL
		case strings.HasPrefix(raw, "/"):
			raw = c.baseURL + raw
		default:
			raw = c.baseURL + "/" + raw
		}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, classify(ClassRequest, "", err)
	}
	if len(r.QueryParams) > 0 {
		q := u.Query()
		for k, vs := range r.QueryParams {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

func (c *Client) buildBody(r *RequestBuilder) (io.Reader, int, string, error) {
	if len(r.files) > 0 {
		return c.buildMultipartBody(r)
	}
	if len(r.FormData) > 0 {
		encoded := r.FormData.Encode()
		return strings.NewReader(encoded), len(encoded), header.FormContentType, nil
	}
	if r.body != nil {
		return r.body, r.bodyLen, "", nil
	}
	return nil, 0, "", nil
}

// buildMultipartBody assembles a multipart/form-data body out of r's
// form fields and files, using a boundary shaped like the impersonated
// browser's own form encoder when the Profile supplies one.
func (c *Client) buildMultipartBody(r *RequestBuilder) (io.Reader, int, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if c.profile != nil && c.profile.MultipartBoundary != nil {
		if err := mw.SetBoundary(c.profile.MultipartBoundary()); err != nil {
			return nil, 0, "", classify(ClassRequest, "", err)
		}
	}

	for k, vs := range r.FormData {
		for _, v := range vs {
			if err := mw.WriteField(k, v); err != nil {
				return nil, 0, "", classify(ClassRequest, "", err)
			}
		}
	}
	for i := range r.files {
		f := &r.files[i]
		if f.cached == nil {
			b, err := io.ReadAll(f.content)
			if err != nil {
				return nil, 0, "", classify(ClassRequest, "", err)
			}
			if closer, ok := f.content.(io.Closer); ok {
				closer.Close()
			}
			f.cached = b
		}
		part, err := mw.CreateFormFile(f.fieldName, f.fileName)
		if err != nil {
			return nil, 0, "", classify(ClassRequest, "", err)
		}
		if _, err := part.Write(f.cached); err != nil {
			return nil, 0, "", classify(ClassRequest, "", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, 0, "", classify(ClassRequest, "", err)
	}
	return &buf, buf.Len(), mw.FormDataContentType(), nil
}

func (c *Client) buildHeaders(r *RequestBuilder, host string) http.Header {
	h := make(http.Header)
	c.profile.applyHeaders(h)
	for k, vs := range c.commonHeaders {
		h.Del(k)
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	for k, vs := range r.Headers {
		h.Del(k)
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	if h.Get(header.UserAgent) == "" {
		h.Set(header.UserAgent, header.DefaultUserAgent)
	}
	negotiateEncoding(h)

	plan := c.headerPlan
	if r.withHostHeader {
		h.Set(header.Host, host)
		plan = &HeaderPlan{
			PseudoOrder: plan.PseudoOrder,
			Order:       append(append([]string(nil), header.Host), plan.Order...),
		}
	}
	plan.Apply(h)
	return h
}

// execute builds the final *http.Request for r and runs it, retrying
// according to this Client's and r's retry policy.
func (c *Client) execute(r *RequestBuilder) (*Response, error) {
	u, err := c.resolveURL(r)
	if err != nil {
		return nil, err
	}

	isHead := strings.EqualFold(r.Method, http.MethodHead)

	var resp *Response
	var lastErr error
	maxRetries := 0
	if r.retryOption != nil {
		maxRetries = r.retryOption.MaxRetries
	}

	for attempt := 0; ; attempt++ {
		bodyReader, bodyLen, contentType, err := c.buildBody(r)
		if err != nil {
			return nil, err
		}
		httpReq, err := http.NewRequestWithContext(r.context(), r.Method, u.String(), bodyReader)
		if err != nil {
			return nil, classify(ClassRequest, "", err)
		}
		if bodyLen > 0 {
			httpReq.ContentLength = int64(bodyLen)
		}
		if r.dumpOptions != nil {
			httpReq = httpReq.WithContext(context.WithValue(httpReq.Context(), dumpContextKey{}, r.dumpOptions))
		}
		httpReq.Header = c.buildHeaders(r, u.Host)
		if contentType != "" && httpReq.Header.Get(header.ContentType) == "" {
			httpReq.Header.Set(header.ContentType, contentType)
		}
		for _, ck := range c.commonCookies {
			httpReq.AddCookie(ck)
		}
		for _, ck := range r.Cookies {
			httpReq.AddCookie(ck)
		}

		httpResp, doErr := c.httpClient.Do(httpReq)
		resp, lastErr = c.wrapResponse(r, httpResp, doErr, isHead)

		if !c.shouldRetry(r, attempt, maxRetries, resp, lastErr) {
			break
		}
		interval := r.retryOption.GetRetryInterval(resp, attempt)
		for _, hook := range r.retryOption.RetryHooks {
			hook(resp, lastErr)
		}
		c.log.Debugf("mimicreq: retrying %s %s (attempt %d) after %v", r.Method, u, attempt+1, interval)
		select {
		case <-time.After(interval):
		case <-r.context().Done():
			return resp, lastErr
		}
	}

	if resp != nil && lastErr == nil && (r.outputFile != "" || r.output != nil) {
		if err := c.drainToOutput(r, resp); err != nil {
			resp.Err = err
			lastErr = err
		}
	}

	return resp, lastErr
}

func (c *Client) wrapResponse(r *RequestBuilder, httpResp *http.Response, err error, isHead bool) (*Response, error) {
	resp := &Response{Request: r, Response: httpResp}
	if err != nil {
		resp.Err = classify(ClassConnect, "", err)
		return resp, resp.Err
	}
	contentEncoding := httpResp.Header.Get(header.ContentEncoding)
	httpResp.Body = newPipelineBody(httpResp.Body, contentEncoding, isHead)
	resp.receivedAt = time.Now()
	if r.dumpOptions != nil {
		dumpResponse(r.dumpOptions, resp)
	}
	return resp, nil
}

func (c *Client) shouldRetry(r *RequestBuilder, attempt, maxRetries int, resp *Response, err error) bool {
	if attempt >= maxRetries {
		return false
	}
	if err != nil && (IsConnect(err) || IsTimeout(err)) {
		return true
	}
	for _, cond := range r.retryOption.RetryConditions {
		if cond(resp, err) {
			return true
		}
	}
	return false
}

func (c *Client) drainToOutput(r *RequestBuilder, resp *Response) error {
	w := r.output
	if w == nil {
		if dir := path.Dir(r.outputFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		f, err := os.Create(r.outputFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return resp.Save(w)
}

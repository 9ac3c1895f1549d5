package mimicreq

import (
	"net/http"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

// Identity names a browser (and version) a Client can impersonate.
type Identity string

const (
	IdentityChrome120  Identity = "chrome120"
	IdentityFirefox120 Identity = "firefox120"
	IdentitySafari16   Identity = "safari16"
)

// MultipartBoundaryFunc generates a multipart/form-data boundary in the
// style a specific browser's form encoder uses.
type MultipartBoundaryFunc func() string

// Profile bundles everything a Client needs to make its traffic look like
// a specific browser: the TLS ClientHello shape, the HTTP/2 connection
// preface, the order headers are written in, and the concrete header
// values a real browser would send alongside the caller's own.
type Profile struct {
	Identity Identity

	TLS *TLSSpec
	H2  *H2Spec

	PseudoHeaderOrder []string
	HeaderOrder       []string
	Headers           map[string]string

	MultipartBoundary MultipartBoundaryFunc
}

// Clone returns a deep-enough copy of p so a caller can customize one
// Client's profile without mutating the shared registry entry.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	cp.TLS = p.TLS.clone()
	cp.H2 = p.H2.clone()
	cp.PseudoHeaderOrder = append([]string(nil), p.PseudoHeaderOrder...)
	cp.HeaderOrder = append([]string(nil), p.HeaderOrder...)
	if p.Headers != nil {
		cp.Headers = make(map[string]string, len(p.Headers))
		for k, v := range p.Headers {
			cp.Headers[k] = v
		}
	}
	return &cp
}

var registry = map[Identity]*Profile{}

func register(p *Profile) {
	registry[p.Identity] = p
}

// LookupProfile returns the registered Profile for id, if any.
func LookupProfile(id Identity) (*Profile, bool) {
	p, ok := registry[id]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// ProfileBuilder assembles a custom Profile, for impersonating a browser
// the built-in registry doesn't carry or tweaking one that it does.
type ProfileBuilder struct {
	p *Profile
}

// NewProfileBuilder starts a ProfileBuilder, optionally seeded from an
// existing registered identity.
func NewProfileBuilder(base Identity) *ProfileBuilder {
	seed, ok := LookupProfile(base)
	if !ok {
		seed = &Profile{Identity: base, TLS: &TLSSpec{}, H2: &H2Spec{}}
	}
	return &ProfileBuilder{p: seed}
}

func (b *ProfileBuilder) WithIdentity(id Identity) *ProfileBuilder {
	b.p.Identity = id
	return b
}

func (b *ProfileBuilder) WithClientHelloID(id utls.ClientHelloID) *ProfileBuilder {
	b.p.TLS.HelloID = id
	return b
}

func (b *ProfileBuilder) WithClientHelloSpec(spec *utls.ClientHelloSpec) *ProfileBuilder {
	b.p.TLS.Spec = spec
	return b
}

func (b *ProfileBuilder) WithHTTP2Settings(settings ...http2.Setting) *ProfileBuilder {
	b.p.H2.Settings = settings
	return b
}

func (b *ProfileBuilder) WithConnectionFlow(n uint32) *ProfileBuilder {
	b.p.H2.ConnectionFlow = n
	return b
}

func (b *ProfileBuilder) WithPriorityFrames(frames ...PriorityFrame) *ProfileBuilder {
	b.p.H2.PriorityFrames = frames
	return b
}

func (b *ProfileBuilder) WithHeaderPriority(pp http2.PriorityParam) *ProfileBuilder {
	b.p.H2.HeaderPriority = pp
	return b
}

func (b *ProfileBuilder) WithPseudoHeaderOrder(order ...string) *ProfileBuilder {
	b.p.PseudoHeaderOrder = order
	return b
}

func (b *ProfileBuilder) WithHeaderOrder(order ...string) *ProfileBuilder {
	b.p.HeaderOrder = order
	return b
}

func (b *ProfileBuilder) WithHeaders(h map[string]string) *ProfileBuilder {
	b.p.Headers = h
	return b
}

func (b *ProfileBuilder) WithMultipartBoundaryFunc(fn MultipartBoundaryFunc) *ProfileBuilder {
	b.p.MultipartBoundary = fn
	return b
}

// WithSkipHTTP2 drops the H2 spec entirely, so the Client never advertises
// "h2" in ALPN and always speaks HTTP/1.1.
func (b *ProfileBuilder) WithSkipHTTP2() *ProfileBuilder {
	b.p.H2 = nil
	return b
}

// WithSkipHeaders drops the profile's browser-shaped default headers,
// so a Client sends the caller's own headers plus only what it always
// adds itself: a default User-Agent when none is set, and Accept-Encoding
// when the caller set none.
func (b *ProfileBuilder) WithSkipHeaders() *ProfileBuilder {
	b.p.Headers = nil
	return b
}

func (b *ProfileBuilder) Build() *Profile {
	return b.p.Clone()
}

// applyHeaders merges the profile's browser-shaped headers into h without
// clobbering anything the caller already set explicitly.
func (p *Profile) applyHeaders(h http.Header) {
	if p == nil {
		return
	}
	for k, v := range p.Headers {
		if h.Get(k) == "" {
			h.Set(k, v)
		}
	}
}

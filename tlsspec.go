package mimicreq

import (
	"context"
	"crypto/tls"
	"net"

	utls "github.com/refraction-networking/utls"
)

// TLSSpec is the TLS fingerprint half of a Profile: either a named uTLS
// preset (HelloID) or a fully custom ClientHelloSpec built by hand. When
// both are set, Spec takes precedence, the way ApplyPreset documents it.
type TLSSpec struct {
	HelloID utls.ClientHelloID
	Spec    *utls.ClientHelloSpec
}

func (s *TLSSpec) clone() *TLSSpec {
	if s == nil {
		return nil
	}
	cp := *s
	if s.Spec != nil {
		specCopy := *s.Spec
		cp.Spec = &specCopy
	}
	return &cp
}

// validate reports whether the installed uTLS backend can honor this
// spec's ClientHelloSpec, without ever dialing a real handshake: it runs
// ApplyPreset against a UClient wired to one end of a net.Pipe, the same
// call handshake makes on a real connection. A Spec that names an
// extension or cipher combination uTLS can't build fails here, at
// ClientBuilder.Build() time, rather than silently on the first request.
func (s *TLSSpec) validate() error {
	if s == nil || s.Spec == nil {
		return nil
	}
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	uconn := utls.UClient(client, &utls.Config{ServerName: "mimicreq.invalid"}, s.HelloID)
	return uconn.ApplyPreset(s.Spec)
}

// handshake runs the uTLS ClientHello this spec describes over an
// already-established plain net.Conn, and returns the resulting
// connection along with the ALPN protocol the server selected. trust
// carries the caller's certificate trust settings (RootCAs, client
// Certificates, InsecureSkipVerify); it never touches the ClientHello
// shape itself, only certificate verification.
func (s *TLSSpec) handshake(ctx context.Context, conn net.Conn, serverName string, nextProtos []string, trust *tls.Config) (*utls.UConn, string, error) {
	cfg := &utls.Config{
		ServerName: serverName,
		NextProtos: nextProtos,
	}
	if trust != nil {
		cfg.RootCAs = trust.RootCAs
		cfg.Certificates = trust.Certificates
		cfg.InsecureSkipVerify = trust.InsecureSkipVerify
	}

	uconn := utls.UClient(conn, cfg, s.HelloID)
	if s.Spec != nil {
		if err := uconn.ApplyPreset(s.Spec); err != nil {
			return nil, "", err
		}
	}
	if err := uconn.HandshakeContext(ctx); err != nil {
		return nil, "", err
	}
	return uconn, uconn.ConnectionState().NegotiatedProtocol, nil
}

package mimicreq

import (
	"context"
	"net"
	"net/url"

	"h12.io/socks"
)

// socksDialContext builds a DialContext that tunnels every connection
// through a SOCKS5 proxy at proxyURL before handing back the final,
// already-connected socket to the caller (normally Transport, which then
// runs its own TLS handshake over it exactly as it would for a direct
// connection).
func socksDialContext(proxyURL *url.URL) (func(ctx context.Context, network, addr string) (net.Conn, error), error) {
	d := socks.NewDialer("tcp", proxyURL.Host)
	if u := proxyURL.User; u != nil {
		auth := &socks.UsernamePassword{Username: u.Username()}
		auth.Password, _ = u.Password()
		d.AuthMethods = []socks.AuthMethod{
			socks.AuthMethodNotRequired,
			socks.AuthMethodUsernamePassword,
		}
		d.Authenticate = auth.Authenticate
	}

	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		var dialer net.Dialer
		conn, err := dialer.DialContext(ctx, "tcp", proxyURL.Host)
		if err != nil {
			return nil, err
		}
		return d.DialWithConn(ctx, conn, network, addr)
	}, nil
}

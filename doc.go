/*
Package mimicreq is an HTTP client that impersonates real browsers at the
wire level: the TLS ClientHello shape, the HTTP/2 connection preface, and
header transmission order all follow a chosen Profile (Chrome, Firefox,
Safari) instead of Go's own defaults.

	client, err := mimicreq.C().Build()
	if err != nil {
		fmt.Println(err)
		return
	}
	resp, err := client.R().
		SetHeader("Accept-Language", "en-US,en;q=0.9").
		Get("https://tls.peet.ws/api/all")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(resp.String())

Response bodies are transparently decoded (gzip, deflate, brotli, zstd)
regardless of how the server chunked or fragmented them on the wire.
*/
package mimicreq

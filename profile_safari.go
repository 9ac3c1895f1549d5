package mimicreq

import (
	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

func init() {
	register(&Profile{
		Identity: IdentitySafari16,
		TLS: &TLSSpec{
			HelloID: utls.HelloSafari_16_0,
		},
		H2: &H2Spec{
			Settings: []http2.Setting{
				{ID: http2.SettingInitialWindowSize, Val: 4194304},
				{ID: http2.SettingMaxConcurrentStreams, Val: 100},
			},
			ConnectionFlow: 10485760,
			HeaderPriority: http2.PriorityParam{
				StreamDep: 0,
				Exclusive: false,
				Weight:    254,
			},
		},
		PseudoHeaderOrder: []string{":method", ":scheme", ":path", ":authority"},
		HeaderOrder: []string{
			"accept",
			"sec-fetch-site",
			"cookie",
			"sec-fetch-dest",
			"accept-language",
			"sec-fetch-mode",
			"user-agent",
			"referer",
			"accept-encoding",
		},
		Headers: map[string]string{
			"accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"sec-fetch-site":  "same-origin",
			"sec-fetch-dest":  "document",
			"accept-language": "en-US,en;q=0.9",
			"sec-fetch-mode":  "navigate",
			"user-agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Safari/605.1.15",
		},
		MultipartBoundary: webkitMultipartBoundary,
	})
}

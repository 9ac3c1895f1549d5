package mimicreq

import (
	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

func init() {
	register(&Profile{
		Identity: IdentityChrome120,
		TLS: &TLSSpec{
			HelloID: utls.HelloChrome_120,
		},
		H2: &H2Spec{
			Settings: []http2.Setting{
				{ID: http2.SettingHeaderTableSize, Val: 65536},
				{ID: http2.SettingEnablePush, Val: 0},
				{ID: http2.SettingMaxConcurrentStreams, Val: 1000},
				{ID: http2.SettingInitialWindowSize, Val: 6291456},
				{ID: http2.SettingMaxHeaderListSize, Val: 262144},
			},
			ConnectionFlow: 15663105,
			HeaderPriority: http2.PriorityParam{
				StreamDep: 0,
				Exclusive: true,
				Weight:    255,
			},
		},
		PseudoHeaderOrder: []string{":method", ":authority", ":scheme", ":path"},
		HeaderOrder: []string{
			"host",
			"pragma",
			"cache-control",
			"sec-ch-ua",
			"sec-ch-ua-mobile",
			"sec-ch-ua-platform",
			"upgrade-insecure-requests",
			"user-agent",
			"accept",
			"sec-fetch-site",
			"sec-fetch-mode",
			"sec-fetch-user",
			"sec-fetch-dest",
			"referer",
			"accept-encoding",
			"accept-language",
			"cookie",
		},
		Headers: map[string]string{
			"pragma":                    "no-cache",
			"cache-control":             "no-cache",
			"sec-ch-ua":                 `"Not_A Brand";v="8", "Chromium";v="120", "Google Chrome";v="120"`,
			"sec-ch-ua-mobile":          "?0",
			"sec-ch-ua-platform":        `"macOS"`,
			"upgrade-insecure-requests": "1",
			"user-agent":                "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
			"sec-fetch-site":            "none",
			"sec-fetch-mode":            "navigate",
			"sec-fetch-user":            "?1",
			"sec-fetch-dest":            "document",
			"accept-language":           "en-US,en;q=0.9",
		},
		MultipartBoundary: webkitMultipartBoundary,
	})
}

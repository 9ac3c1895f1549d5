package mimicreq

import (
	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

func init() {
	register(&Profile{
		Identity: IdentityFirefox120,
		TLS: &TLSSpec{
			HelloID: utls.HelloFirefox_120,
		},
		H2: &H2Spec{
			Settings: []http2.Setting{
				{ID: http2.SettingHeaderTableSize, Val: 65536},
				{ID: http2.SettingInitialWindowSize, Val: 131072},
				{ID: http2.SettingMaxFrameSize, Val: 16384},
			},
			ConnectionFlow: 12517377,
			PriorityFrames: []PriorityFrame{
				{StreamID: 3, PriorityParam: http2.PriorityParam{StreamDep: 0, Exclusive: false, Weight: 200}},
				{StreamID: 5, PriorityParam: http2.PriorityParam{StreamDep: 0, Exclusive: false, Weight: 100}},
				{StreamID: 7, PriorityParam: http2.PriorityParam{StreamDep: 0, Exclusive: false, Weight: 0}},
				{StreamID: 9, PriorityParam: http2.PriorityParam{StreamDep: 7, Exclusive: false, Weight: 0}},
				{StreamID: 11, PriorityParam: http2.PriorityParam{StreamDep: 3, Exclusive: false, Weight: 0}},
				{StreamID: 13, PriorityParam: http2.PriorityParam{StreamDep: 0, Exclusive: false, Weight: 240}},
			},
			HeaderPriority: http2.PriorityParam{
				StreamDep: 13,
				Exclusive: false,
				Weight:    41,
			},
		},
		PseudoHeaderOrder: []string{":method", ":path", ":authority", ":scheme"},
		HeaderOrder: []string{
			"user-agent",
			"accept",
			"accept-language",
			"accept-encoding",
			"referer",
			"cookie",
			"upgrade-insecure-requests",
			"sec-fetch-dest",
			"sec-fetch-mode",
			"sec-fetch-site",
			"sec-fetch-user",
			"te",
		},
		Headers: map[string]string{
			"user-agent":                "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:120.0) Gecko/20100101 Firefox/120.0",
			"accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
			"accept-language":           "en-US,en;q=0.5",
			"upgrade-insecure-requests": "1",
			"sec-fetch-dest":            "document",
			"sec-fetch-mode":            "navigate",
			"sec-fetch-site":            "same-origin",
			"sec-fetch-user":            "?1",
		},
		MultipartBoundary: firefoxMultipartBoundary,
	})
}

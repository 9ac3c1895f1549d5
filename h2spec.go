package mimicreq

import (
	"io"

	"golang.org/x/net/http2"
)

// PriorityFrame is a HTTP/2 PRIORITY frame to send right after the
// connection preface, before any request is made, the way browsers
// establish their stream-dependency tree up front.
type PriorityFrame struct {
	StreamID uint32
	http2.PriorityParam
}

// H2Spec is the HTTP/2 connection-level fingerprint half of a Profile:
// the SETTINGS a browser sends on connection, the flow-control window it
// grants, the PRIORITY tree it pre-declares, and the priority it attaches
// to each request's HEADERS frame. The pseudo-header order lives on
// Profile.PseudoHeaderOrder, not here.
type H2Spec struct {
	Settings       []http2.Setting
	ConnectionFlow uint32
	PriorityFrames []PriorityFrame
	HeaderPriority http2.PriorityParam
}

func (s *H2Spec) clone() *H2Spec {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Settings = append([]http2.Setting(nil), s.Settings...)
	cp.PriorityFrames = append([]PriorityFrame(nil), s.PriorityFrames...)
	return &cp
}

// WriteFrames emits this spec's SETTINGS, WINDOW_UPDATE and PRIORITY
// frames on fr in the declared order, ahead of the connection preface's
// automatic defaults. golang.org/x/net/http2.Transport writes its own
// preface and settings when it takes ownership of a connection, so this
// is the seam a lower-level HTTP/2 codec would call into if one were
// plugged in ahead of Transport to get byte-for-byte frame ordering. The
// default Transport wiring in this package never calls it: it only reads
// SETTINGS_MAX_HEADER_LIST_SIZE out of the spec (maxHeaderListSize), and
// leaves exact frame-level replication to that seam.
func (s *H2Spec) WriteFrames(fr *http2.Framer) error {
	if s == nil {
		return nil
	}
	if len(s.Settings) > 0 {
		if err := fr.WriteSettings(s.Settings...); err != nil {
			return err
		}
	}
	if s.ConnectionFlow > 0 {
		if err := fr.WriteWindowUpdate(0, s.ConnectionFlow); err != nil {
			return err
		}
	}
	for _, p := range s.PriorityFrames {
		if err := fr.WritePriority(p.StreamID, p.PriorityParam); err != nil {
			return err
		}
	}
	return nil
}

// validate reports whether this spec's SETTINGS/WINDOW_UPDATE/PRIORITY
// frames are well-formed by running WriteFrames against a throwaway
// Framer, the same call a lower-level HTTP/2 codec plugged in ahead of
// Transport would make on a real connection. Catches a malformed frame
// (e.g. a WINDOW_UPDATE increment past the 31-bit limit, or a PRIORITY
// frame on stream 0) at
// ClientBuilder.Build() time instead of the first request.
func (s *H2Spec) validate() error {
	if s == nil {
		return nil
	}
	return s.WriteFrames(http2.NewFramer(io.Discard, nil))
}

// maxHeaderListSize reports the SETTINGS_MAX_HEADER_LIST_SIZE value this
// spec declares, if any, for wiring into http2.Transport.MaxHeaderListSize.
func (s *H2Spec) maxHeaderListSize() (uint32, bool) {
	if s == nil {
		return 0, false
	}
	for _, st := range s.Settings {
		if st.ID == http2.SettingMaxHeaderListSize {
			return st.Val, true
		}
	}
	return 0, false
}

package mimicreq

import (
	"errors"
	"fmt"

	"github.com/mimicreq/mimicreq/internal/pipeline"
)

// Class classifies a request failure the way callers actually need to
// branch on it: was it a DNS/dial/TLS problem, a timeout, too many
// redirects, a malformed response body, or something the decoding
// pipeline flagged.
type Class string

const (
	ClassBuilder  Class = "builder"
	ClassConnect  Class = "connect"
	ClassTimeout  Class = "timeout"
	ClassTLS      Class = "tls"
	ClassRedirect Class = "redirect"
	ClassBody     Class = "body"
	ClassDecode   Class = "decode"
	ClassStatus   Class = "status"
	ClassRequest  Class = "request"
)

// ReasonUnsupportedProfileFeature is the ClassBuilder reason a Client
// construction fails with when the installed TLS/HTTP2 backend can't honor
// something a Profile's fingerprint requires, caught at Build() time
// instead of surfacing as a generic connect failure on the first request.
const ReasonUnsupportedProfileFeature = "unsupported_profile_feature"

// Error wraps an underlying error with the Class a caller should branch
// on, and an optional reason string (e.g. "alpn_mismatch" for ClassConnect,
// ReasonUnsupportedProfileFeature for ClassBuilder).
type Error struct {
	Class  Class
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("mimicreq: %s(%s): %v", e.Class, e.Reason, e.Err)
	}
	return fmt.Sprintf("mimicreq: %s: %v", e.Class, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func classify(class Class, reason string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Class: class, Reason: reason, Err: err}
}

// IsBuilder reports whether err is a ClassBuilder mimicreq.Error.
func IsBuilder(err error) bool { return hasClass(err, ClassBuilder) }

// IsTimeout reports whether err (or any error it wraps) is a ClassTimeout
// mimicreq.Error.
func IsTimeout(err error) bool { return hasClass(err, ClassTimeout) }

// IsConnect reports whether err is a ClassConnect mimicreq.Error.
func IsConnect(err error) bool { return hasClass(err, ClassConnect) }

// IsDecode reports whether err is a ClassDecode mimicreq.Error.
func IsDecode(err error) bool { return hasClass(err, ClassDecode) }

// IsRedirect reports whether err is a ClassRedirect mimicreq.Error.
func IsRedirect(err error) bool { return hasClass(err, ClassRedirect) }

// IsStatus reports whether err is a ClassStatus mimicreq.Error.
func IsStatus(err error) bool { return hasClass(err, ClassStatus) }

func hasClass(err error, class Class) bool {
	var merr *Error
	if errors.As(err, &merr) {
		return merr.Class == class
	}
	return false
}

// classifyBodyErr is the Open Question (c) resolution: once the decoding
// pipeline has taken ownership of the body (left pipeline.StateInit), any
// transport-level error observed while it's Decoding/DrainTail is
// reclassified Decode instead of the raw Body/transport error it would
// otherwise surface as. Passthrough bodies (the pipeline never left Init
// because no decoder was ever selected) keep the error unclassified
// Body, since no decoder ever took ownership of the stream.
func classifyBodyErr(state pipeline.State, err error) *Error {
	if err == nil {
		return nil
	}
	switch state {
	case pipeline.StateDecoding, pipeline.StateDrainTail, pipeline.StateError:
		return classify(ClassDecode, "", err)
	default:
		return classify(ClassBody, "", err)
	}
}

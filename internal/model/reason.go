package model

import (
	"fmt"
	"strings"
)

// Reason classifies why a fetch attempt failed.
// The numeric values are stable because they are stored in the journal database.
type Reason int

const (
	// ReasonNone means the fetch succeeded.
	ReasonNone Reason = iota

	// ReasonUnicode means the response body could not be decoded as text.
	ReasonUnicode

	// ReasonHTTP means the server answered with an error status,
	// or the peer reset the connection.
	ReasonHTTP

	// ReasonSSL covers name resolution, connection and TLS failures.
	ReasonSSL

	// ReasonPacket means the response was truncated or malformed in transit,
	// or the connection was aborted locally.
	ReasonPacket

	// ReasonURL means the URL was rejected before a request was issued.
	ReasonURL
)

// Reasons lists every failure reason in declaration order.
var Reasons = []Reason{ReasonUnicode, ReasonHTTP, ReasonSSL, ReasonPacket, ReasonURL}

// String returns the upper-case name of the reason.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "OK"
	case ReasonUnicode:
		return "UNICODE"
	case ReasonHTTP:
		return "HTTP"
	case ReasonSSL:
		return "SSL"
	case ReasonPacket:
		return "PACKET"
	case ReasonURL:
		return "URL"
	default:
		return "UNKNOWN"
	}
}

// IsFailure reports whether r is one of the failure reasons.
func (r Reason) IsFailure() bool {
	return r >= ReasonUnicode && r <= ReasonURL
}

// ParseReason converts a reason name back into a Reason.
// Matching is case-insensitive.
func ParseReason(s string) (Reason, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OK", "":
		return ReasonNone, nil
	case "UNICODE":
		return ReasonUnicode, nil
	case "HTTP":
		return ReasonHTTP, nil
	case "SSL":
		return ReasonSSL, nil
	case "PACKET":
		return ReasonPacket, nil
	case "URL":
		return ReasonURL, nil
	default:
		return ReasonNone, fmt.Errorf("unknown fetch reason %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Reason) UnmarshalText(text []byte) error {
	parsed, err := ParseReason(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

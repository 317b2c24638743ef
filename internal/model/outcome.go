package model

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/sha3"
)

// Outcome is the result of a single fetch attempt.
// Exactly one of the two shapes is populated: a successful outcome has
// Reason == ReasonNone and a Body, a failed outcome has a failure Reason
// and usually the underlying Err.
type Outcome struct {
	// URL is the URL that was requested.
	URL string

	// Reason is ReasonNone on success.
	Reason Reason

	// Err is the transport or decoding error behind a failure.
	Err error

	// StatusCode is the HTTP status, zero when no response was received.
	StatusCode int

	// ContentType is the Content-Type header of the response.
	ContentType string

	// Charset is the name of the encoding the body was decoded from.
	Charset string

	// Body is the response body transcoded to UTF-8.
	Body []byte

	// RawSize is the number of bytes read from the wire.
	RawSize int

	// Digest is the hex SHA3-256 of the raw body.
	Digest string

	// Elapsed is the wall time of the attempt.
	Elapsed time.Duration
}

// Success builds a successful outcome.
func Success(url string, status int, body []byte) Outcome {
	return Outcome{URL: url, StatusCode: status, Body: body, RawSize: len(body), Digest: Digest(body)}
}

// Failure builds a failed outcome.
func Failure(url string, reason Reason, err error) Outcome {
	return Outcome{URL: url, Reason: reason, Err: err}
}

// OK reports whether the fetch succeeded.
func (o Outcome) OK() bool {
	return o.Reason == ReasonNone
}

// Digest returns the hex encoded SHA3-256 of b.
func Digest(b []byte) string {
	sum := sha3.Sum256(b)
	return hex.EncodeToString(sum[:])
}

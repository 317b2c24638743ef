// Package fetcher performs single HTTP GET requests for the crawler and
// classifies every failure into a model.Reason.
//
// Fetch never returns a Go error. A caller always receives a model.Outcome,
// which is either a UTF-8 body or one of the failure reasons:
//
//	HTTP     server error status, or connection reset by peer
//	SSL      name resolution, connection, TLS, timeout or redirect failure
//	UNICODE  body cannot be decoded as text
//	PACKET   response truncated or malformed, or connection aborted locally
//	URL      malformed URL, rejected before any request is issued
package fetcher

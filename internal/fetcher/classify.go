package fetcher

import (
	"errors"
	"io"
	"strings"
	"syscall"

	"github.com/nao1215/crawley/internal/model"
)

// classifyRequestError maps an error from http.Client.Do, i.e. one raised
// before a response was available.
func classifyRequestError(err error) model.Reason {
	switch {
	case errors.Is(err, syscall.ECONNRESET):
		return model.ReasonHTTP
	case errors.Is(err, syscall.ECONNABORTED):
		return model.ReasonPacket
	case isMalformedResponse(err):
		return model.ReasonPacket
	default:
		// DNS, dial, TLS, proxy, timeout and redirect failures.
		return model.ReasonSSL
	}
}

// classifyReadError maps an error raised while reading the body.
func classifyReadError(err error) model.Reason {
	if errors.Is(err, syscall.ECONNRESET) {
		return model.ReasonHTTP
	}
	// Truncation, aborts and timeouts mid-body all leave a partial payload.
	return model.ReasonPacket
}

// isMalformedResponse reports whether the server closed the connection
// mid-response or sent something that is not HTTP.
func isMalformedResponse(err error) bool {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "malformed HTTP") || strings.Contains(msg, "server sent")
}

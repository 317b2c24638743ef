package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/nao1215/crawley/internal/model"
)

// DefaultMaxBodySize limits how much of a response body is read.
const DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

// errStatus is wrapped by failures caused by an HTTP error status.
var errStatus = errors.New("http error status")

// Fetcher issues GET requests with a fixed User-Agent.
type Fetcher struct {
	// client performs the requests. Its timeout bounds a whole fetch.
	client *http.Client

	// userAgent is sent on every request. Empty leaves Go's default.
	userAgent string

	// maxBodySize is the number of body bytes kept. Longer bodies are
	// cut and decoded as far as they go.
	maxBodySize int64

	// logger receives one Info line per request.
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum number of body bytes read.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher around client. The client's timeout is the fetch
// timeout; see transport.NewHTTPClient.
func New(client *http.Client, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      client,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Fetch requests rawURL and returns the classified outcome.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) model.Outcome {
	start := time.Now()
	outcome := f.fetch(ctx, rawURL)
	outcome.URL = rawURL
	outcome.Elapsed = time.Since(start)
	return outcome
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) model.Outcome {
	f.logger.Info("making request", "url", rawURL)

	if err := checkURL(rawURL); err != nil {
		return model.Failure(rawURL, model.ReasonURL, err)
	}

	// Drop whatever the previous attempt left behind.
	f.client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return model.Failure(rawURL, model.ReasonURL, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return model.Failure(rawURL, classifyRequestError(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		failure := model.Failure(rawURL, model.ReasonHTTP, fmt.Errorf("%w: %s", errStatus, resp.Status))
		failure.StatusCode = resp.StatusCode
		return failure
	}

	// One byte past the limit tells a capped body from one of exactly
	// maxBodySize bytes.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		failure := model.Failure(rawURL, classifyReadError(err), err)
		failure.StatusCode = resp.StatusCode
		return failure
	}
	capped := int64(len(raw)) > f.maxBodySize
	if capped {
		raw = raw[:f.maxBodySize]
		f.logger.Debug("response body truncated", "url", rawURL, "max_body_size", f.maxBodySize)
	}

	contentType := resp.Header.Get("Content-Type")
	text, charsetName, err := decodeText(raw, contentType, capped)
	if err != nil {
		failure := model.Failure(rawURL, model.ReasonUnicode, err)
		failure.StatusCode = resp.StatusCode
		return failure
	}

	return model.Outcome{
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Charset:     charsetName,
		Body:        text,
		RawSize:     len(raw),
		Digest:      model.Digest(raw),
	}
}

// checkURL rejects URLs that cannot be requested at all.
func checkURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

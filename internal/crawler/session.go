package crawler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/crawley/internal/extract"
	"github.com/nao1215/crawley/internal/model"
	"github.com/nao1215/crawley/internal/validator"
	"github.com/nao1215/crawley/internal/visited"
)

// DefaultIdleDelay is how long the loop waits after a pass that made no
// progress.
const DefaultIdleDelay = 5 * time.Second

// Fetcher retrieves one URL. Implementations classify failures into the
// returned outcome instead of returning an error.
type Fetcher interface {
	Fetch(ctx context.Context, url string) model.Outcome
}

// Record is the durable set of accepted URLs.
type Record interface {
	Contains(url string) bool
	Add(url string) error
	Refresh() error
	Len() int
}

// Journal receives every fetch outcome of a session.
type Journal interface {
	RecordOutcome(ctx context.Context, out model.Outcome, linksFound int) error
}

// Stats is a point-in-time view of a session.
type Stats struct {
	// Visited is the number of URLs fetched successfully this session.
	Visited int

	// Attempts is the number of fetches issued.
	Attempts int

	// Failures counts failed fetches by reason.
	Failures map[model.Reason]int

	// Frontier is the number of queued URLs.
	Frontier int

	// Passes is the number of completed main loop passes.
	Passes int
}

// Session is one crawl. It is not reusable once Run has returned.
type Session struct {
	// fetcher performs the HTTP requests.
	fetcher Fetcher

	// validator decides which URLs may stay in the frontier. It is built
	// over record, so visited URLs are rejected.
	validator *validator.Validator

	// record is the visited list. A URL is added after its links have
	// been merged.
	record Record

	// journal receives every outcome. Nil disables it.
	journal Journal

	logger *slog.Logger

	// workers bounds concurrent fetches within a pass.
	workers int

	// delay is slept before every fetch.
	delay time.Duration

	// idleDelay is slept after a pass that fetched nothing.
	idleDelay time.Duration

	// maxPages stops the crawl after that many successful fetches.
	// Zero means no limit.
	maxPages int

	// frontier holds the URLs discovered but not yet settled.
	frontier *Frontier

	// running is set by Run and never cleared.
	running atomic.Bool

	// mu serializes the merge step and guards the counters below.
	mu       sync.Mutex
	visited  int
	attempts int
	passes   int
	failures map[model.Reason]int
}

// Option configures a Session.
type Option func(*Session)

// WithWorkers sets how many fetches run at once. One keeps the crawl
// strictly sequential in frontier order.
func WithWorkers(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithDelay sets a pause before every fetch.
func WithDelay(d time.Duration) Option {
	return func(s *Session) {
		s.delay = d
	}
}

// WithIdleDelay sets the wait after a pass that made no progress.
func WithIdleDelay(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.idleDelay = d
		}
	}
}

// WithMaxPages stops the crawl after n successful fetches. Zero means no
// limit.
func WithMaxPages(n int) Option {
	return func(s *Session) {
		s.maxPages = n
	}
}

// WithJournal records every outcome in j.
func WithJournal(j Journal) Option {
	return func(s *Session) {
		s.journal = j
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates a Session. The validator should be built over the
// same record, so that visited URLs are rejected.
func NewSession(f Fetcher, v *validator.Validator, record Record, opts ...Option) *Session {
	s := &Session{
		fetcher:   f,
		validator: v,
		record:    record,
		workers:   1,
		idleDelay: DefaultIdleDelay,
		frontier:  NewFrontier(),
		failures:  make(map[model.Reason]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Run crawls from seed until ctx is cancelled or the page limit is reached.
// Cancellation is the normal way to stop a crawl and returns nil.
//
// The seed is fetched without validation. If that fetch fails the seed
// stays queued and is retried by the main loop like any other URL.
func (s *Session) Run(ctx context.Context, seed string) error {
	if seed == "" {
		return ErrNoSeed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrSessionRunning
	}

	s.logger.Info("starting crawl", "seed", seed, "workers", s.workers, "max_pages", s.maxPages)
	s.frontier.Append(seed)
	s.fetchAndMerge(ctx, seed)

	for {
		if ctx.Err() != nil {
			s.logger.Info("crawl cancelled", "visited", s.Stats().Visited)
			return nil
		}
		if s.limitReached() {
			s.logger.Info("page limit reached", "max_pages", s.maxPages)
			return nil
		}

		progressed := s.pass(ctx)
		if dropped := s.frontier.Filter(s.validator.Valid); dropped > 0 {
			s.logger.Debug("post-pass filter", "dropped", dropped)
		}

		s.mu.Lock()
		s.passes++
		s.mu.Unlock()

		if progressed {
			continue
		}
		s.logger.Debug("no progress, idling", "frontier", s.frontier.Len(), "idle_delay", s.idleDelay)
		sleep(ctx, s.idleDelay)
	}
}

// pass processes one snapshot of the frontier and reports whether any
// fetch succeeded.
func (s *Session) pass(ctx context.Context) bool {
	var progressed atomic.Bool

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, u := range s.frontier.Snapshot() {
		if gctx.Err() != nil || s.limitReached() {
			break
		}
		g.Go(func() error {
			if s.visit(gctx, u) {
				progressed.Store(true)
			}
			return nil
		})
	}
	_ = g.Wait()

	return progressed.Load()
}

// visit checks one snapshot entry against the live state and fetches it.
func (s *Session) visit(ctx context.Context, url string) bool {
	if url == "" {
		return false
	}
	if err := s.record.Refresh(); err != nil {
		s.logger.Warn("failed to refresh visited record", "error", err)
	}

	s.mu.Lock()
	queued := s.frontier.Contains(url)
	rule, ok := s.validator.Reject(url)
	s.mu.Unlock()

	if !queued {
		return false
	}
	if !ok {
		s.logger.Debug("skipping url", "url", url, "rule", rule)
		return false
	}
	if s.limitReached() {
		return false
	}
	return s.fetchAndMerge(ctx, url)
}

// fetchAndMerge fetches url and, on success, merges its links into the
// frontier. It reports whether the fetch succeeded.
func (s *Session) fetchAndMerge(ctx context.Context, url string) bool {
	if s.delay > 0 && !sleep(ctx, s.delay) {
		return false
	}

	out := s.fetcher.Fetch(ctx, url)
	if !out.OK() && ctx.Err() != nil {
		// Interrupted by shutdown, not a property of the URL.
		return false
	}

	s.mu.Lock()
	s.attempts++
	if !out.OK() {
		s.failures[out.Reason]++
	}
	s.mu.Unlock()

	if !out.OK() {
		s.logger.Warn("fetch failed", "url", url, "reason", out.Reason, "status", out.StatusCode, "error", out.Err)
		s.recordOutcome(ctx, out, 0)
		return false
	}

	anchors, err := extract.LinksFromBytes(out.Body)
	if err != nil {
		s.logger.Warn("failed to parse document", "url", url, "error", err)
	}
	hrefs := extract.Hrefs(anchors)

	s.mu.Lock()
	added := s.frontier.Append(hrefs...)
	s.frontier.Remove(url)
	dropped := s.frontier.Filter(s.validator.Valid)
	if err := s.record.Add(url); err != nil {
		if errors.Is(err, visited.ErrUnencodable) {
			s.logger.Error("failed to encode visited url", "url", url, "error", err)
		} else {
			s.logger.Error("failed to record visited url", "url", url, "error", err)
		}
	}
	s.visited++
	s.mu.Unlock()

	s.logger.Debug("merged links", "url", url, "found", len(hrefs), "added", added, "dropped", dropped)
	s.recordOutcome(ctx, out, len(hrefs))
	return true
}

func (s *Session) recordOutcome(ctx context.Context, out model.Outcome, links int) {
	if s.journal == nil {
		return
	}
	if err := s.journal.RecordOutcome(ctx, out, links); err != nil {
		s.logger.Warn("failed to journal fetch", "url", out.URL, "error", err)
	}
}

func (s *Session) limitReached() bool {
	if s.maxPages <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visited >= s.maxPages
}

// Frontier returns the queued URLs in order.
func (s *Session) Frontier() []string {
	return s.frontier.Snapshot()
}

// Stats returns the session counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	failures := make(map[model.Reason]int, len(s.failures))
	for r, n := range s.failures {
		failures[r] = n
	}
	return Stats{
		Visited:  s.visited,
		Attempts: s.attempts,
		Failures: failures,
		Frontier: s.frontier.Len(),
		Passes:   s.passes,
	}
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

package model

import "time"

// Run is one crawl session as recorded in the journal.
type Run struct {
	ID         int64      `json:"id"`
	Seed       string     `json:"seed"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Finished reports whether the run was closed.
func (r Run) Finished() bool {
	return r.FinishedAt != nil
}

// Duration returns the run length, or the time since start for an open run.
func (r Run) Duration(now time.Time) time.Duration {
	if r.FinishedAt != nil {
		return r.FinishedAt.Sub(r.StartedAt)
	}
	return now.Sub(r.StartedAt)
}

// Fetch is one journaled fetch attempt.
type Fetch struct {
	ID          int64         `json:"id"`
	RunID       int64         `json:"run_id"`
	URL         string        `json:"url"`
	Reason      Reason        `json:"reason"`
	StatusCode  int           `json:"status_code,omitempty"`
	ContentType string        `json:"content_type,omitempty"`
	Charset     string        `json:"charset,omitempty"`
	Bytes       int           `json:"bytes"`
	LinksFound  int           `json:"links_found"`
	Digest      string        `json:"digest,omitempty"`
	Elapsed     time.Duration `json:"elapsed"`
	Error       string        `json:"error,omitempty"`
	FetchedAt   time.Time     `json:"fetched_at"`
}

// URLCount pairs a URL with a number of occurrences.
type URLCount struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}

// RunSummary aggregates the fetches of one run.
type RunSummary struct {
	Run Run `json:"run"`

	// Attempts is the number of fetches issued.
	Attempts int `json:"attempts"`

	// Visited is the number of successful fetches.
	Visited int `json:"visited"`

	// Failures counts failed fetches by reason.
	Failures map[Reason]int `json:"failures"`

	// Bytes is the total raw body size of successful fetches.
	Bytes int64 `json:"bytes"`

	// LinksFound is the number of hrefs extracted, duplicates included.
	LinksFound int `json:"links_found"`

	// DuplicateBodies is the number of successful fetches whose body
	// digest was already seen earlier in the run.
	DuplicateBodies int `json:"duplicate_bodies"`

	// AverageElapsed is the mean fetch time.
	AverageElapsed time.Duration `json:"average_elapsed"`

	// TopFailing lists the URLs that failed most often.
	TopFailing []URLCount `json:"top_failing,omitempty"`
}

// FailureCount returns the number of failed fetches.
func (s *RunSummary) FailureCount() int {
	n := 0
	for _, c := range s.Failures {
		n += c
	}
	return n
}

// SuccessRate returns the share of successful fetches, 0 when nothing was
// attempted.
func (s *RunSummary) SuccessRate() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Visited) / float64(s.Attempts)
}

// Package crawler runs the breadth-first crawl.
//
// A Session owns the crawl state: the Frontier of URLs waiting to be
// fetched and the visited record of URLs already accepted. All mutation of
// that state goes through the merge step performed after every successful
// fetch:
//
//  1. append the page's hrefs that are not already queued,
//  2. remove the fetched URL,
//  3. drop every queued URL the validator now rejects,
//  4. append the fetched URL to the visited record.
//
// The four steps run under one lock, so concurrent workers never observe a
// half-merged frontier.
//
// # Passes
//
// The main loop works in passes. Each pass snapshots the frontier, fetches
// the valid entries of the snapshot and finishes with a filter over the
// whole frontier. Failed fetches leave their URL queued, so it is retried
// on the next pass. A pass that makes no progress is followed by an idle
// delay before the frontier is scanned again.
//
// # Usage
//
//	record, _ := visited.Open("crawler-list.txt")
//	v, _ := validator.New(record)
//	s := crawler.NewSession(f, v, record, crawler.WithWorkers(4))
//	err := s.Run(ctx, "http://dmoz-odp.org")
package crawler

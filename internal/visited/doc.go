// Package visited provides the durable record of URLs the crawler has
// accepted.
//
// The record is a newline-delimited text file, one URL per line. It is
// truncated when opened, appended to as URLs are accepted and doubles as
// the dedup cache: Refresh re-reads the file so that edits made by other
// processes are observed by the running crawl.
package visited

// Package database provides the SQLite crawl journal.
//
// The journal keeps one row per crawl run and one row per fetch attempt:
// URL, outcome reason, status code, sizes, link counts, the SHA3 digest of
// the body and the elapsed time. Page content is never stored; the visited
// record file remains the crawl's only output of accepted URLs.
//
// SQLite is used through modernc.org/sqlite, which needs no cgo. The
// database lives in the XDG data directory unless configured otherwise.
package database

// Package main provides the entry point for the crawley CLI.
//
// crawley is a breadth-first web crawler. It starts from a seed URL,
// follows every link it accepts and appends each successfully fetched URL
// to a plain-text visited list that is emptied when the crawl starts.
//
// Usage:
//
//	crawley
//	crawley crawl http://example.com
//	crawley report --markdown
//
// See --help for all available options.
package main

func main() {
	Execute()
}

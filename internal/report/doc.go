// Package report renders crawl journal summaries.
//
// Three formats are available: a plain text report for terminals, JSON for
// tooling, and GitHub flavored Markdown with a mermaid pie chart of the
// failure reasons. All of them implement Writer.
package report

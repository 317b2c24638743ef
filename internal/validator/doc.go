// Package validator decides whether a URL may enter or stay in the crawl
// frontier.
//
// A Validator combines three kinds of rules:
//   - fixed structural rules (relative links, fragments, binary file
//     extensions, non-HTTP schemes)
//   - a fixed content-safety block-list that cannot be configured away
//   - optional operator rules: exclusion substrings and ignore globs
//
// and it rejects anything already present in the visited record.
//
// Validators are immutable after construction and safe for concurrent use,
// provided the Membership they are given is.
package validator

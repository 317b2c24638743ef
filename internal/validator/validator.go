package validator

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Rule names the check that rejected a URL.
type Rule string

// Rejection rules, in the order they are evaluated.
const (
	RuleNone       Rule = ""
	RuleEmpty      Rule = "empty"
	RulePrefix     Rule = "prefix"
	RuleExtension  Rule = "extension"
	RuleScheme     Rule = "scheme"
	RuleBlockList  Rule = "blocklist"
	RuleVisited    Rule = "visited"
	RuleExclusion  Rule = "exclusion"
	RuleIgnoreGlob Rule = "ignore-glob"
)

// rejectedPrefixes are relative, fragment and malformed forms.
var rejectedPrefixes = []string{"/", ".", "#", "?", "\t", " "}

// rejectedSuffixes are binary resources and onion hosts.
var rejectedSuffixes = []string{".jpg", ".png", ".svg", ".ico", ".webp", ".exe", ".pdf", ".onion"}

// rejectedSchemes are links that never point at a crawlable document.
var rejectedSchemes = []string{"javascript", "mailto:", "tel:"}

// blockList is the content-safety filter. Matching is case-sensitive
// substring matching and it is applied whatever else is configured.
var blockList = []string{"under18", "child", "minor", "kid"}

// Membership is the read view of the visited record.
type Membership interface {
	Contains(url string) bool
}

// Validator is the predicate gating the frontier.
type Validator struct {
	visited    Membership
	exclusions []string
	ignore     []glob.Glob
}

// Option configures a Validator.
type Option func(*Validator) error

// WithExclusions rejects URLs containing any of the substrings.
// Empty substrings are ignored, otherwise they would match everything.
func WithExclusions(substrings []string) Option {
	return func(v *Validator) error {
		for _, s := range substrings {
			if s != "" {
				v.exclusions = append(v.exclusions, s)
			}
		}
		return nil
	}
}

// WithIgnorePatterns rejects URLs matching any of the glob patterns.
// Patterns use gobwas/glob syntax and are matched against the whole URL,
// e.g. "*://*.example.com/private/*".
func WithIgnorePatterns(patterns []string) Option {
	return func(v *Validator) error {
		for _, p := range patterns {
			g, err := glob.Compile(p)
			if err != nil {
				return fmt.Errorf("invalid ignore pattern %q: %w", p, err)
			}
			v.ignore = append(v.ignore, g)
		}
		return nil
	}
}

// New creates a Validator. visited may be nil, in which case the dedup
// check never rejects.
func New(visited Membership, opts ...Option) (*Validator, error) {
	v := &Validator{visited: visited}
	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Valid reports whether url is eligible for crawling.
func (v *Validator) Valid(url string) bool {
	_, ok := v.Reject(url)
	return ok
}

// Reject returns the first rule that rejects url, and true when none does.
func (v *Validator) Reject(url string) (Rule, bool) {
	if url == "" {
		return RuleEmpty, false
	}
	for _, p := range rejectedPrefixes {
		if strings.HasPrefix(url, p) {
			return RulePrefix, false
		}
	}
	for _, s := range rejectedSuffixes {
		if strings.HasSuffix(url, s) {
			return RuleExtension, false
		}
	}
	for _, p := range rejectedSchemes {
		if strings.HasPrefix(url, p) {
			return RuleScheme, false
		}
	}
	for _, word := range blockList {
		if strings.Contains(url, word) {
			return RuleBlockList, false
		}
	}
	if v.visited != nil && v.visited.Contains(url) {
		return RuleVisited, false
	}
	for _, s := range v.exclusions {
		if strings.Contains(url, s) {
			return RuleExclusion, false
		}
	}
	for _, g := range v.ignore {
		if g.Match(url) {
			return RuleIgnoreGlob, false
		}
	}
	return RuleNone, true
}

package validator

import (
	"testing"
)

// setMembership is a Membership backed by a map.
type setMembership map[string]bool

func (s setMembership) Contains(url string) bool { return s[url] }

func mustNew(t *testing.T, visited Membership, opts ...Option) *Validator {
	t.Helper()
	v, err := New(visited, opts...)
	if err != nil {
		t.Fatalf("failed to create validator: %v", err)
	}
	return v
}

// TestValidatorStructuralRules tests the fixed structural rules.
func TestValidatorStructuralRules(t *testing.T) {
	t.Parallel()

	v := mustNew(t, nil)

	tests := []struct {
		name string
		url  string
		rule Rule
	}{
		{name: "empty string", url: "", rule: RuleEmpty},
		{name: "root relative", url: "/about", rule: RulePrefix},
		{name: "dot relative", url: "./page", rule: RulePrefix},
		{name: "fragment", url: "#top", rule: RulePrefix},
		{name: "query only", url: "?page=2", rule: RulePrefix},
		{name: "leading tab", url: "\thttp://example.com", rule: RulePrefix},
		{name: "leading space", url: " http://example.com", rule: RulePrefix},
		{name: "jpg", url: "http://example.com/a.jpg", rule: RuleExtension},
		{name: "png", url: "http://example.com/a.png", rule: RuleExtension},
		{name: "svg", url: "http://example.com/a.svg", rule: RuleExtension},
		{name: "ico", url: "http://example.com/favicon.ico", rule: RuleExtension},
		{name: "webp", url: "http://example.com/a.webp", rule: RuleExtension},
		{name: "exe", url: "http://example.com/setup.exe", rule: RuleExtension},
		{name: "pdf", url: "http://example.com/paper.pdf", rule: RuleExtension},
		{name: "onion host", url: "http://abcdefghijklmnop.onion", rule: RuleExtension},
		{name: "javascript", url: "javascript:void(0)", rule: RuleScheme},
		{name: "javascript without colon", url: "javascriptfoo", rule: RuleScheme},
		{name: "mailto", url: "mailto:a@example.com", rule: RuleScheme},
		{name: "tel", url: "tel:+123", rule: RuleScheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rule, ok := v.Reject(tt.url)
			if ok {
				t.Fatalf("expected %q to be rejected", tt.url)
			}
			if rule != tt.rule {
				t.Errorf("expected rule %q, got %q", tt.rule, rule)
			}
			if v.Valid(tt.url) {
				t.Errorf("Valid(%q) = true", tt.url)
			}
		})
	}
}

// TestValidatorAccepts tests that ordinary absolute URLs pass.
func TestValidatorAccepts(t *testing.T) {
	t.Parallel()

	v := mustNew(t, setMembership{})

	for _, url := range []string{
		"http://example.com",
		"https://example.com/x",
		"http://example.com/image.jpeg",
		"http://example.com/a.JPG",
		"ftp://example.com/file",
	} {
		if !v.Valid(url) {
			t.Errorf("expected %q to be valid", url)
		}
	}
}

// TestValidatorBlockList tests the content-safety filter.
func TestValidatorBlockList(t *testing.T) {
	t.Parallel()

	t.Run("rejects blocked words without exclusions", func(t *testing.T) {
		t.Parallel()

		v := mustNew(t, nil)
		for _, url := range []string{
			"http://example.com/under18",
			"http://children.example.com",
			"http://example.com/minority",
			"http://kidsite.example.com/",
		} {
			rule, ok := v.Reject(url)
			if ok || rule != RuleBlockList {
				t.Errorf("expected %q rejected by block-list, got %q, %v", url, rule, ok)
			}
		}
	})

	t.Run("rejects blocked words with exclusions loaded", func(t *testing.T) {
		t.Parallel()

		v := mustNew(t, nil, WithExclusions([]string{"spamdomain"}))
		if v.Valid("http://example.com/kid") {
			t.Error("expected block-list to apply with exclusions configured")
		}
	})

	t.Run("matching is case-sensitive", func(t *testing.T) {
		t.Parallel()

		v := mustNew(t, nil)
		if !v.Valid("http://example.com/Kid") {
			t.Error("expected upper-case variant to pass")
		}
	})
}

// TestValidatorVisited tests the dedup check.
func TestValidatorVisited(t *testing.T) {
	t.Parallel()

	visited := setMembership{}
	v := mustNew(t, visited)

	url := "http://example.com/page"
	if !v.Valid(url) {
		t.Fatal("expected unvisited URL to be valid")
	}

	visited[url] = true

	rule, ok := v.Reject(url)
	if ok || rule != RuleVisited {
		t.Errorf("expected visited rejection, got %q, %v", rule, ok)
	}
}

// TestValidatorExclusions tests the exclusion configuration.
func TestValidatorExclusions(t *testing.T) {
	t.Parallel()

	t.Run("rejects excluded substring", func(t *testing.T) {
		t.Parallel()

		v := mustNew(t, nil, WithExclusions([]string{"spamdomain"}))
		rule, ok := v.Reject("http://spamdomain.example/page")
		if ok || rule != RuleExclusion {
			t.Errorf("expected exclusion rejection, got %q, %v", rule, ok)
		}
		if !v.Valid("http://example.com/page") {
			t.Error("expected unrelated URL to be valid")
		}
	})

	t.Run("ignores empty substrings", func(t *testing.T) {
		t.Parallel()

		v := mustNew(t, nil, WithExclusions([]string{""}))
		if !v.Valid("http://example.com") {
			t.Error("empty exclusion must not reject everything")
		}
	})
}

// TestValidatorIgnorePatterns tests glob ignore patterns.
func TestValidatorIgnorePatterns(t *testing.T) {
	t.Parallel()

	t.Run("rejects matching URL", func(t *testing.T) {
		t.Parallel()

		v := mustNew(t, nil, WithIgnorePatterns([]string{"*://*.example.com/private/*"}))
		rule, ok := v.Reject("https://www.example.com/private/page")
		if ok || rule != RuleIgnoreGlob {
			t.Errorf("expected glob rejection, got %q, %v", rule, ok)
		}
		if !v.Valid("https://www.example.com/public/page") {
			t.Error("expected public page to be valid")
		}
	})

	t.Run("invalid pattern is an error", func(t *testing.T) {
		t.Parallel()

		if _, err := New(nil, WithIgnorePatterns([]string{"[unclosed"})); err == nil {
			t.Error("expected error for invalid pattern")
		}
	})
}

// TestValidatorIdempotent tests that repeated calls agree.
func TestValidatorIdempotent(t *testing.T) {
	t.Parallel()

	v := mustNew(t, setMembership{"http://seen.example.com": true}, WithExclusions([]string{"spam"}))

	for _, url := range []string{
		"http://example.com",
		"http://seen.example.com",
		"http://spam.example.com",
		"/relative",
	} {
		first := v.Valid(url)
		for range 3 {
			if v.Valid(url) != first {
				t.Errorf("Valid(%q) changed between calls", url)
			}
		}
	}
}

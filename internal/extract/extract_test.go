package extract

import (
	"strings"
	"testing"

	"github.com/nao1215/crawley/internal/model"
)

// TestLinks tests anchor extraction.
func TestLinks(t *testing.T) {
	t.Parallel()

	t.Run("returns raw hrefs in document order", func(t *testing.T) {
		t.Parallel()

		doc := `<html><body>
			<a href="/about">About</a>
			<p><a href="http://example.com/x">X</a></p>
			<a href="javascript:void(0)">JS</a>
		</body></html>`

		anchors, err := Links(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("failed to extract: %v", err)
		}

		expected := []string{"/about", "http://example.com/x", "javascript:void(0)"}
		got := Hrefs(anchors)
		if len(got) != len(expected) {
			t.Fatalf("expected %d hrefs, got %d: %v", len(expected), len(got), got)
		}
		for i := range expected {
			if got[i] != expected[i] {
				t.Errorf("href %d: got %q, expected %q", i, got[i], expected[i])
			}
		}
	})

	t.Run("keeps duplicates", func(t *testing.T) {
		t.Parallel()

		doc := `<a href="http://example.com/a">1</a><a href="http://example.com/a">2</a>`
		anchors, err := LinksFromBytes([]byte(doc))
		if err != nil {
			t.Fatalf("failed to extract: %v", err)
		}
		if len(anchors) != 2 {
			t.Errorf("expected 2 anchors, got %d", len(anchors))
		}
	})

	t.Run("reports anchors without href", func(t *testing.T) {
		t.Parallel()

		doc := `<a name="top">Top</a><a href="">Empty</a><a href="http://example.com">Ok</a>`
		anchors, err := LinksFromBytes([]byte(doc))
		if err != nil {
			t.Fatalf("failed to extract: %v", err)
		}

		expected := []model.Anchor{
			{Href: "", HasHref: false},
			{Href: "", HasHref: true},
			{Href: "http://example.com", HasHref: true},
		}
		if len(anchors) != len(expected) {
			t.Fatalf("expected %d anchors, got %d", len(expected), len(anchors))
		}
		for i := range expected {
			if anchors[i] != expected[i] {
				t.Errorf("anchor %d: got %+v, expected %+v", i, anchors[i], expected[i])
			}
		}

		if hrefs := Hrefs(anchors); len(hrefs) != 2 {
			t.Errorf("expected 2 hrefs after dropping missing ones, got %v", hrefs)
		}
	})

	t.Run("does not resolve or trim hrefs", func(t *testing.T) {
		t.Parallel()

		doc := `<a href=" http://example.com">space</a><a href="page.html">rel</a>`
		anchors, err := LinksFromBytes([]byte(doc))
		if err != nil {
			t.Fatalf("failed to extract: %v", err)
		}
		hrefs := Hrefs(anchors)
		if len(hrefs) != 2 || hrefs[0] != " http://example.com" || hrefs[1] != "page.html" {
			t.Errorf("unexpected hrefs %q", hrefs)
		}
	})

	t.Run("ignores other elements", func(t *testing.T) {
		t.Parallel()

		doc := `<link href="/style.css"><img src="/a.png"><area href="/map">`
		anchors, err := LinksFromBytes([]byte(doc))
		if err != nil {
			t.Fatalf("failed to extract: %v", err)
		}
		if len(anchors) != 0 {
			t.Errorf("expected no anchors, got %v", anchors)
		}
	})
}

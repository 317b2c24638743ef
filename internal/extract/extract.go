// Package extract pulls anchor targets out of HTML documents.
//
// The extractor is deliberately thin: it reports every <a> element in
// document order with its raw href, including duplicates and anchors that
// have no href at all. Deduplication and validation belong to the crawler.
package extract

import (
	"bytes"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nao1215/crawley/internal/model"
)

// Links parses an HTML document and returns its anchors in document order.
func Links(r io.Reader) ([]model.Anchor, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	anchors := make([]model.Anchor, 0)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			href, ok := getAttr(n, "href")
			anchors = append(anchors, model.Anchor{Href: href, HasHref: ok})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return anchors, nil
}

// LinksFromBytes is Links over an in-memory document.
func LinksFromBytes(doc []byte) ([]model.Anchor, error) {
	return Links(bytes.NewReader(doc))
}

// Hrefs returns the href of every anchor that has one, keeping order and
// duplicates.
func Hrefs(anchors []model.Anchor) []string {
	hrefs := make([]string, 0, len(anchors))
	for _, a := range anchors {
		if a.HasHref {
			hrefs = append(hrefs, a.Href)
		}
	}
	return hrefs
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

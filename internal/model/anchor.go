package model

// Anchor is one <a> element found in a document.
// HasHref is false when the element carries no href attribute at all,
// which is different from an empty href.
type Anchor struct {
	Href    string
	HasHref bool
}

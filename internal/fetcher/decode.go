package fetcher

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// minDetectConfidence is the chardet confidence below which its guess is
// ignored and the HTML default is kept.
const minDetectConfidence = 50

// errInvalidUTF8 is returned for bodies labelled or detected as UTF-8 that
// contain invalid byte sequences.
var errInvalidUTF8 = errors.New("body is not valid UTF-8")

// decodeText transcodes body to UTF-8.
//
// The encoding is taken from a BOM, the Content-Type charset or a <meta>
// declaration. When none of those is present, chardet guesses from the
// bytes before falling back to windows-1252.
//
// capped reports that body was cut at the size limit. A UTF-8 character
// split by the cut is then dropped instead of failing the page.
func decodeText(body []byte, contentType string, capped bool) ([]byte, string, error) {
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	if !certain && name == "windows-1252" && !declaresCharset(body) {
		if detected, detectedName, ok := detect(body); ok {
			enc, name = detected, detectedName
		}
	}
	if enc == nil {
		return nil, "", fmt.Errorf("unknown charset %q", name)
	}

	if name == "utf-8" {
		if capped {
			body = trimPartialRune(body)
		}
		if !utf8.Valid(body) {
			return nil, name, errInvalidUTF8
		}
		return body, name, nil
	}

	text, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return nil, name, fmt.Errorf("failed to decode %s body: %w", name, err)
	}
	return text, name, nil
}

// trimPartialRune drops an incomplete UTF-8 sequence at the end of b.
func trimPartialRune(b []byte) []byte {
	for i := len(b) - 1; i >= 0 && i > len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if utf8.FullRune(b[i:]) {
			return b
		}
		return b[:i]
	}
	return b
}

// detect runs chardet over body and resolves its answer to an encoding.
func detect(body []byte) (encoding.Encoding, string, bool) {
	if len(body) == 0 {
		return nil, "", false
	}
	result, err := chardet.NewTextDetector().DetectBest(body)
	if err != nil || result.Confidence < minDetectConfidence {
		return nil, "", false
	}
	enc, err := htmlindex.Get(result.Charset)
	if err != nil {
		return nil, "", false
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return nil, "", false
	}
	return enc, name, true
}

// declaresCharset reports whether the document head carries a charset
// declaration, in which case the declared encoding is trusted.
func declaresCharset(body []byte) bool {
	head := body
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("charset"))
}

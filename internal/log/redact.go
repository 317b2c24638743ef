package log

import (
	"net/url"
	"regexp"
	"strings"
)

// urlMask replaces a password or query value inside a URL.
const urlMask = "***"

// sensitiveParams are query parameter names whose values are masked.
var sensitiveParams = map[string]bool{
	"key":       true,
	"apikey":    true,
	"api_key":   true,
	"auth":      true,
	"sig":       true,
	"signature": true,
	"code":      true,
}

// sensitiveParamKeywords mask any parameter whose name contains them.
var sensitiveParamKeywords = []string{"token", "password", "passwd", "secret", "session"}

// urlInText finds http(s) URLs embedded in free text such as error messages.
var urlInText = regexp.MustCompile(`https?://[^\s"'<>]+`)

// RedactURL masks the userinfo password and the values of sensitive query
// parameters of raw. It reports whether anything was masked; values that are
// not absolute http(s) URLs are returned unchanged.
func RedactURL(raw string) (string, bool) {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return raw, false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw, false
	}

	changed := false
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), urlMask)
			changed = true
		}
	}

	if u.RawQuery != "" {
		q := u.Query()
		for name, values := range q {
			if !isSensitiveParam(name) {
				continue
			}
			for i := range values {
				values[i] = urlMask
			}
			changed = true
		}
		if changed {
			u.RawQuery = q.Encode()
		}
	}

	if !changed {
		return raw, false
	}
	// Keep the mask readable instead of percent-encoded.
	return strings.ReplaceAll(u.String(), url.QueryEscape(urlMask), urlMask), true
}

func isSensitiveParam(name string) bool {
	lower := strings.ToLower(name)
	if sensitiveParams[lower] {
		return true
	}
	for _, p := range sensitiveParamKeywords {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func redactURLsInText(text string) string {
	return urlInText.ReplaceAllStringFunc(text, func(m string) string {
		redacted, _ := RedactURL(m)
		return redacted
	})
}

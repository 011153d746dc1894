package middleware

import (
	"net/url"
	"unicode"
)

const maxRedirectLen = 2048

// IsSafeRedirect accepts only same-origin relative paths ("/notes/3?x=1").
// Protocol-relative ("//evil"), backslash tricks ("/\evil"), absolute URLs and
// control characters are all rejected.
func IsSafeRedirect(target string) bool {
	if target == "" || len(target) > maxRedirectLen || target[0] != '/' {
		return false
	}
	if len(target) > 1 && (target[1] == '/' || target[1] == '\\') {
		return false
	}
	for _, r := range target {
		if r == '\\' || unicode.IsControl(r) {
			return false
		}
	}

	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return false
	}
	return true
}

// SafeRedirect returns target if it is a safe relative path, fallback otherwise.
func SafeRedirect(target, fallback string) string {
	if IsSafeRedirect(target) {
		return target
	}
	return fallback
}

// Internal/helpers/helpers.go.

package helpers

import (
	"net/url"
	"strings"
)

// IsValidURL reports whether candidate is an absolute http or https URL with a host.
func IsValidURL(candidate string) bool {
	if candidate == "" {
		return false
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}

// StripTrailingSlash removes a single trailing slash.
func StripTrailingSlash(rawURL string) string {
	return strings.TrimSuffix(rawURL, "/")
}

// JoinPath appends path to base without doubling the slash between them.
func JoinPath(base, path string) string {
	return StripTrailingSlash(base) + path
}

// Classify hides the password part of a DSN or redis URL before it is logged.
func Classify(dsn string) string {
	if dsn == "" {
		return ""
	}

	parsed, err := url.Parse(dsn)
	if err != nil || parsed.User == nil {
		return dsn
	}
	if _, hasPassword := parsed.User.Password(); !hasPassword {
		return dsn
	}
	parsed.User = url.UserPassword(parsed.User.Username(), "♦️ ♠️ ♥️ ♣️")
	return parsed.String()
}

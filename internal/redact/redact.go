// Package redact strips sensitive information from strings before they
// are logged or returned in error responses. Errors from the model client
// can embed the API key or local filesystem layout; neither belongs in a
// log line.
package redact

import "regexp"

// Redaction placeholders.
const (
	RedactionPlaceholder    = "[REDACTED]"
	RedactedPathPlaceholder = "[REDACTED_PATH]"
	RedactedKeyPlaceholder  = "[REDACTED_KEY]"
)

var (
	// API keys, tokens, and similar credentials in key=value shapes.
	apiKeyRegex = regexp.MustCompile(
		`(?i)(api[_-]?key|token|secret|key|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)

	// Google API keys as bare values.
	googleKeyRegex = regexp.MustCompile(`AIza[A-Za-z0-9_\-]{30,}`)

	// Absolute filesystem paths (two or more segments).
	unixPathRegex = regexp.MustCompile(`(/[\w.-]+){2,}`)
)

// String redacts sensitive fragments of s.
func String(s string) string {
	if s == "" {
		return s
	}

	s = apiKeyRegex.ReplaceAllString(s, "${1}${2}"+RedactedKeyPlaceholder)
	s = googleKeyRegex.ReplaceAllString(s, RedactedKeyPlaceholder)
	s = unixPathRegex.ReplaceAllString(s, RedactedPathPlaceholder)
	return s
}

// Error redacts an error's message. Nil errors yield an empty string.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

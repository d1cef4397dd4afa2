// Package redact strips credentials, connection strings, file paths and
// similar details from strings before they are logged.
package redact

import "regexp"

// Placeholders substituted for redacted content.
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedHostPlaceholder       = "[REDACTED_HOST]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// rules are applied in order; earlier rules see the original text.
var rules = []rule{
	// userinfo of a database or cache URL
	{regexp.MustCompile(`(?i)\b(postgres(?:ql)?|redis|rediss|sqlite3?|mysql)://[^@\s]+@`), RedactedCredentialPlaceholder},
	{regexp.MustCompile(`(?i)\b(password|passwd|pwd|secret|token)\s*[=:]\s*\S+`), RedactedCredentialPlaceholder},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), RedactedEmailPlaceholder},
	{regexp.MustCompile(`(?i)\b(SELECT\b.+\bFROM|INSERT\s+INTO|UPDATE\s+\w+\s+SET|DELETE\s+FROM)\b.*`), RedactedSQLPlaceholder},
	{regexp.MustCompile(`(/[\w.-]+){2,}`), RedactedPathPlaceholder},
	{regexp.MustCompile(`\b[a-zA-Z0-9.-]+:\d{2,5}\b`), RedactedHostPlaceholder},
}

// String redacts sensitive information from s.
func String(s string) string {
	if s == "" {
		return s
	}
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.placeholder)
	}
	return s
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// Package redact strips secrets and infrastructure details from text before it
// is logged or sent to a client. Error messages from the database driver, the
// object store and the speech provider can echo connection strings, keys,
// object paths and SQL, none of which should leave the process.
package redact

import "regexp"

// Placeholders substituted for redacted fragments.
const (
	Placeholder           = "[REDACTED]"
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	KeyPlaceholder        = "[REDACTED_KEY]"
	PathPlaceholder       = "[REDACTED_PATH]"
	HostPlaceholder       = "[REDACTED_HOST]"
	SQLPlaceholder        = "[REDACTED_SQL]"
	JWTPlaceholder        = "[REDACTED_JWT]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// rules are applied in order. Credential-bearing patterns run before the
// generic path and host patterns so that a URL is not half redacted.
var rules = []rule{
	{regexp.MustCompile(`(?i)(postgres(?:ql)?|s3|https?)://[^@\s/]+@`), CredentialPlaceholder},
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), JWTPlaceholder},
	{regexp.MustCompile(`AIza[0-9A-Za-z_\-]{20,}`), KeyPlaceholder},
	{regexp.MustCompile(`(?i)X-Amz-(?:Credential|Signature|Security-Token)=[^&\s]+`), KeyPlaceholder},
	{regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[=:]\s*['"]?[^'"&\s]{3,}`), CredentialPlaceholder},
	{regexp.MustCompile(`(?i)(api[_-]?key|secret(?:[_-]?key)?|access[_-]?key|token)\s*[=:]\s*['"]?[A-Za-z0-9_\-.~+/]{8,}`), KeyPlaceholder},
	{regexp.MustCompile(`(AKIA|ASIA)[A-Z0-9]{12,}`), KeyPlaceholder},
	{regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE)\b[\s\S]*?\b(FROM|INTO|SET)\b[^;]*`), SQLPlaceholder},
	{regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`), "[STACK_TRACE_REDACTED]"},
	{regexp.MustCompile(`(/[\w.-]+){2,}`), PathPlaceholder},
	{regexp.MustCompile(`[A-Za-z]:\\[^\\\s]+(\\[^\\\s]+)+`), PathPlaceholder},
	{regexp.MustCompile(`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`), HostPlaceholder},
	{regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}(?::\d{1,5})?\b`), HostPlaceholder},
}

// String returns input with every sensitive fragment replaced.
func String(input string) string {
	if input == "" {
		return input
	}
	for _, r := range rules {
		input = r.pattern.ReplaceAllString(input, r.placeholder)
	}
	return input
}

// Error is String applied to err.Error(). A nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

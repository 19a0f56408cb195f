package chatwoot

import "strings"

// NormalizePhone prepends a single "+" to a bare phone number. Numbers already
// prefixed pass through unchanged, so the function is idempotent.
func NormalizePhone(number string) string {
	trimmed := strings.TrimSpace(number)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "+") {
		return trimmed
	}
	return "+" + trimmed
}

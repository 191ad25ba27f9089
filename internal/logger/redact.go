package logger

import (
	"log/slog"
	"strings"
)

// Compact tokens start with the encoding of `{"`.
const tokenPrefix = "eyJ"

var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"key",
	"credential",
	"authorization",
	"bearer",
}

const redactedValue = "***REDACTED***"

func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindString {
		return a
	}

	s := a.Value.String()
	if s == "" {
		return a
	}
	if looksLikeToken(s) {
		return slog.String(a.Key, maskToken(s))
	}

	keyLower := strings.ToLower(a.Key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return slog.String(a.Key, redactedValue)
		}
	}
	return a
}

func looksLikeToken(s string) bool {
	return strings.HasPrefix(s, tokenPrefix) && strings.Count(s, ".") == 2
}

// maskToken keeps the header segment, which carries only the algorithm, and
// hides the payload and signature.
func maskToken(s string) string {
	header, _, _ := strings.Cut(s, ".")
	return header + ".***.***"
}

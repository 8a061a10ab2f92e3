package logger

import (
	"log/slog"
	"strings"
)

// Keys whose values are never logged.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"authorization",
	"credential",
	"bearer",
}

// Route prefixes whose next path segment is the shared password.
var passwordPathPrefixes = []string{
	"/location-update/",
	"/data-update/",
}

const redactedValue = "***REDACTED***"

func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		if v != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
		if masked := RedactPath(v); masked != v {
			return slog.String(a.Key, masked)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// RedactPath masks the password segment of tracker update paths:
// /location-update/<pwd>/u1/1/2 becomes /location-update/***/u1/1/2.
// Other strings are returned unchanged.
func RedactPath(path string) string {
	for _, prefix := range passwordPathPrefixes {
		rest, ok := strings.CutPrefix(path, prefix)
		if !ok {
			continue
		}
		_, tail, found := strings.Cut(rest, "/")
		if !found {
			return prefix + "***"
		}
		return prefix + "***/" + tail
	}
	return path
}

// IsSensitiveKey reports whether a key name suggests secret content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

package config

import "strings"

// Sanitize returns a copy of the config with secrets masked, for logging.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	if sanitized.Security.Password != "" {
		sanitized.Security.Password = maskSecret(sanitized.Security.Password)
	}
	if sanitized.Security.PasswordHash != "" {
		sanitized.Security.PasswordHash = "[REDACTED]"
	}
	return &sanitized
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:1] + strings.Repeat("*", len(s)-2) + s[len(s)-1:]
}

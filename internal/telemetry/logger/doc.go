// Package logger provides structured logging for tracklog.
//
// It wraps log/slog with JSON (default) or text output, a process-wide
// level that can be changed at runtime, optional rotating file output and
// redaction of secrets. Tracker clients put the shared password in the URL
// path, so request paths are masked before they are logged.
package logger

// Package httpserver provides the HTTP/HTTPS server for tracklog.
//
// Routes:
//
//   - Tracker updates: /location-update/..., /data-update/...
//   - Read side: /latest/locations, /latest/data
//   - Probes: /health, /ready, /metrics
//
// Tracker routes run behind Recover, RequestID, per-IP RateLimit, Audit and
// Metrics. TLS certificates can be reloaded without a restart.
package httpserver

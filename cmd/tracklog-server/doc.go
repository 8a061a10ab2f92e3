// Package main provides the entry point for tracklog-server.
//
// The server accepts location and status pings from trackers over HTTP and
// records them in two time-bucketed snapshot stores:
//
//   - location: latitude, longitude and the matching place name
//   - data: the location plus battery level and the user's profile
//
// Usage:
//
//	tracklog-server [flags]
//	tracklog-server --config /etc/tracklog/config.yaml
//
// Users, places, the tracker password and the log level are reloaded when the
// configuration file changes or on SIGHUP. TLS certificates are reloaded when
// their files change.
package main

// Package config provides server configuration for tracklog.
//
// This package defines the server configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation (required dirs, windows, password, places)
//   - sanitize.go: Log sanitization (hide passwords)
//
// Configuration is loaded via internal/infra/confloader from a YAML file
// and TRACKLOG_ environment variables.
package config

// Package service provides domain services for tracklog.
//
// Domain services contain the request handling logic that sits between the
// transport layer and the snapshot stores. They define no storage of their
// own; all state lives in the stores they are given.
//
// This package contains:
//
//   - TrackingService: location and user data updates, latest state reads
//   - PasswordVerifier: shared password check (plain or argon2id hash)
//
// Services are safe for concurrent use. The Directory (users, places,
// password) can be swapped at runtime when the configuration is reloaded.
package service

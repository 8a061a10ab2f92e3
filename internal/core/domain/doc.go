// Package domain defines the core domain models for tracklog.
//
// Domain models are pure value objects without any IO dependencies or
// framework coupling. This package contains:
//
//   - LocationSnapshot: a location ping as recorded by the location store
//   - UserDataSnapshot: a richer status ping (location, battery, profile)
//   - User, Place: the configured people and named places
//   - Errors: Domain-specific error definitions
//
// The JSON shape of the snapshot types is the on-disk format; field names
// must not change.
package domain

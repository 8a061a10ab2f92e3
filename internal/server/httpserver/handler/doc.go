// Package handler provides the HTTP request handlers for tracklog.
//
// Tracker endpoints keep the URL shape existing clients use, with the
// shared password as the first path segment:
//
//	GET /location-update/{pwd}/{user_id}/{lat}/{long}
//	GET /data-update/{pwd}/{user_id}/{lat}/{long}/{battery}
//
// They answer with a bare status code. The read endpoints take the password
// as a Bearer token and answer with the JSON envelope in types.go:
//
//	GET /latest/locations
//	GET /latest/data
package handler

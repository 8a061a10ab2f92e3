// Package snapshot provides the time-bucketed snapshot store for tracklog.
//
// Every update writes one JSON file named after a millisecond timestamp:
//
//	<dir>/<millis>.json
//	{
//	  "<batch millis>": { "<entity id>": <payload>, ... },
//	  ...
//	}
//
// Each batch is a full view of every entity known when it was written, so
// the batch with the largest key is always the current state.
//
// Write target selection:
//
//  1. No file yet: start <now>.json.
//  2. Newest file younger than the window: append a batch to it.
//  3. Otherwise: start <now>.json, seeded with the newest file's latest view.
//
// Files are never deleted by the store. A superseded file is history.
//
// Directory entries whose stem is not an unsigned integer are ignored, but a
// name that is not valid UTF-8 aborts the scan, and a batch key that is not
// an unsigned integer fails the read.
package snapshot

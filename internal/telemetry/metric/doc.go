// Package metric provides Prometheus metrics for tracklog.
//
// Registry owns a private prometheus.Registry with:
//
//   - tracklog_store_updates_total{store,result}
//   - tracklog_store_rotations_total{store}
//   - tracklog_store_update_duration_seconds{store}
//   - tracklog_store_files{store}
//   - tracklog_requests_total{method,route,status}
//
// plus the Go runtime and process collectors. Registry implements
// snapshot.Observer, and Handler serves the /metrics endpoint.
package metric

// Package output renders tracklog-cli results as a table, JSON or YAML.
//
// Commands build an explicit *Table for the table format and hand the raw
// value to the JSON and YAML formatters, so scripts see the same field names
// as the snapshot files.
package output
